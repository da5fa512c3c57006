package imop

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlend_Basic(t *testing.T) {
	assert := assert.New(t)

	op := NewBlend()
	assert.Empty(op.Get())
	err := op.Set("blend_mode_not_supported")
	assert.Error(err)
	assert.NoError(op.Set(Darken))
	assert.Equal(Darken, op.Get())
	assert.NoError(op.Set(Lighten))
	assert.Equal(Lighten, op.Get())
}

func TestBlend_Modes(t *testing.T) {
	pinkFront := color.NRGBA{R: 214, G: 20, B: 65, A: 255}
	orangeBack := color.NRGBA{R: 250, G: 121, B: 17, A: 255}

	rect := image.Rect(0, 0, 1, 1)
	source := image.NewNRGBA(rect)
	backdrop := image.NewNRGBA(rect)
	draw.Draw(source, rect, &image.Uniform{pinkFront}, image.Point{}, draw.Src)
	draw.Draw(backdrop, rect, &image.Uniform{orangeBack}, image.Point{}, draw.Src)

	tests := []struct {
		mode     string
		expected []uint8
	}{
		{Darken, []uint8{214, 20, 17, 255}},
		{Lighten, []uint8{250, 121, 65, 255}},
		{Multiply, []uint8{210, 9, 4, 255}},
		{Screen, []uint8{254, 132, 78, 255}},
		{Overlay, []uint8{253, 19, 9, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			op := InitOp()
			blend := NewBlend()
			assert.NoError(t, blend.Set(tt.mode))

			bmp := NewBitmap(rect)
			op.Draw(bmp, source, backdrop, blend)
			assert.EqualValues(t, tt.expected, bmp.Img.Pix)
		})
	}
}

func TestBlend_Tint(t *testing.T) {
	assert := assert.New(t)

	mask := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	mask.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	mask.SetNRGBA(1, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 64})

	fg := color.NRGBA{R: 10, G: 200, B: 30, A: 255}
	res := Tint(mask, fg)

	assert.Equal(fg, res.NRGBAAt(0, 0))
	assert.Equal(color.NRGBA{R: 10, G: 200, B: 30, A: 64}, res.NRGBAAt(1, 0))
}
