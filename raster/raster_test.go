package raster

import (
	"testing"

	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func coverage(pix []uint8) int {
	n := 0
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0 {
			n++
		}
	}
	return n
}

func TestRaster_Glyph(t *testing.T) {
	assert := assert.New(t)

	face, err := NewFace(goregular.TTF, 16, 72)
	require.NoError(t, err)
	defer face.Close()

	assert.Greater(face.Height(), 10)

	a, err := face.Glyph('A')
	require.NoError(t, err)
	assert.Equal(face.Height(), a.Bounds().Dy())
	assert.Positive(a.Bounds().Dx())
	assert.Positive(coverage(a.Pix))

	// coverage is drawn in white
	for i := 0; i < len(a.Pix); i += 4 {
		if a.Pix[i+3] != 0 {
			assert.Equal([]uint8{0xff, 0xff, 0xff}, a.Pix[i:i+3])
		}
	}

	space, err := face.Glyph(' ')
	require.NoError(t, err)
	assert.Equal(face.Height(), space.Bounds().Dy())
	assert.Zero(coverage(space.Pix))

	i, err := face.Glyph('i')
	require.NoError(t, err)
	w, err := face.Glyph('W')
	require.NoError(t, err)
	assert.Less(i.Bounds().Dx(), w.Bounds().Dx())
}

func TestRaster_Errors(t *testing.T) {
	assert := assert.New(t)

	_, err := NewFace([]byte("not a font"), 16, 72)
	assert.Equal(errors.CodeInvalidInput, errors.GetCode(err))

	_, err = NewFace(goregular.TTF, 0, 72)
	assert.Equal(errors.CodeInvalidInput, errors.GetCode(err))

	_, err = Open("testdata/missing.ttf", 16, 72)
	assert.Error(err)

	face, err := NewFace(goregular.TTF, 12, 72)
	require.NoError(t, err)
	_, err = face.Glyph('中')
	assert.Equal(errors.CodeNotFound, errors.GetCode(err))
}
