package cgui

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/esimov/cgui/fontpool"
	"github.com/esimov/cgui/qoi"
	"github.com/esimov/cgui/utils"
	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFont draws the bits of a character code on the first row of a fixed size cell.
type stubFont struct {
	width, height int
	// tall makes the glyph of one character a pixel higher than the others.
	tall rune
}

func (s stubFont) Glyph(ch rune) (*image.NRGBA, error) {
	h := s.height
	if ch == s.tall && s.tall != 0 {
		h++
	}
	img := image.NewNRGBA(image.Rect(0, 0, s.width, h))
	for x := 0; x < s.width; x++ {
		if ch != ' ' && int(ch)>>x&1 == 1 {
			img.SetNRGBA(x, 0, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
		}
	}
	return img, nil
}

func filled(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// splitBackground is uniform red on the left half and a gradient on the right half.
func splitBackground(w, h int) *image.NRGBA {
	img := filled(w, h, color.NRGBA{R: 0xff, A: 0xff})
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 8), G: uint8(y * 16), B: 0x40, A: 0xff})
		}
	}
	return img
}

func TestGenerator_ImageDedup(t *testing.T) {
	assert := assert.New(t)
	g := NewGenerator("demo")

	red := filled(4, 4, color.NRGBA{R: 0xff, A: 0xff})
	a, err := g.AddImage(red, "first")
	require.NoError(t, err)
	b, err := g.AddImage(filled(4, 4, color.NRGBA{R: 0xff, A: 0xff}), "second")
	require.NoError(t, err)
	c, err := g.AddImage(filled(4, 4, color.NRGBA{B: 0xff, A: 0xff}), "third")
	require.NoError(t, err)

	assert.Equal(a, b)
	assert.NotEqual(a, c)
	assert.True(strings.HasPrefix(a, "_CG_IMAGE_"))

	out, err := g.Finish()
	require.NoError(t, err)
	require.Len(t, out.Images, 2)
	assert.Equal("first", out.Images[0].Description)
	assert.Equal(4, out.Images[0].Width)
	assert.Equal(len(out.Images[0].Data)+len(out.Images[1].Data), out.DataSize)

	img, err := qoi.DecodeImage(out.Images[0].Data, 4, 4)
	require.NoError(t, err)
	assert.Equal(color.NRGBA{R: 0xff, A: 0xff}, img.NRGBAAt(3, 3))
}

func TestGenerator_CroppableImage(t *testing.T) {
	assert := assert.New(t)
	g := NewGenerator("demo")

	black := color.NRGBA{A: 0xff}
	wide, err := g.AddCroppableImage(filled(2, 1, black), "wide")
	require.NoError(t, err)
	again, err := g.AddCroppableImage(filled(2, 1, black), "wide again")
	require.NoError(t, err)
	tall, err := g.AddCroppableImage(filled(1, 2, black), "tall")
	require.NoError(t, err)

	assert.True(strings.HasPrefix(wide, "_CG_IMAGE_OBJ_"))
	assert.Equal(wide, again)
	assert.Equal(wide+"_1x2", tall)

	out, err := g.Finish()
	require.NoError(t, err)
	// Both shapes encode to the same stream.
	require.Len(t, out.Images, 1)
	require.Len(t, out.Objects, 2)
	assert.Equal(out.Images[0].Name, out.Objects[0].Image)
	assert.Equal(out.Images[0].Name, out.Objects[1].Image)
	assert.Equal(1, out.Objects[1].Width)
	assert.Equal(2, out.Objects[1].Height)
	assert.Equal(len(out.Images[0].Data)+2*objectSize, out.DataSize)
}

func TestGenerator_TextureFill(t *testing.T) {
	assert := assert.New(t)
	g := NewGenerator("demo")
	font := stubFont{width: 6, height: 4}

	plain := NewTextElement("plain", image.Rect(0, 0, 8, 4), Number, font, "f", DefaultFontStyle, "0123")
	textured := NewTextElement("textured", image.Rect(10, 2, 18, 6), Number, font, "f", DefaultFontStyle, "0123")
	same := NewTextElement("same", image.Rect(10, 2, 18, 6), String, font, "f", DefaultFontStyle, "abc")

	require.NoError(t, g.AddScreen("main", splitBackground(20, 8), plain, textured, same))
	out, err := g.Finish()
	require.NoError(t, err)

	require.Len(t, out.Screens, 1)
	els := out.Screens[0].Elements
	require.Len(t, els, 3)

	assert.False(els[0].Fill.IsImage())
	assert.Equal(qoi.RGB565(0xff, 0, 0), els[0].Fill.Color)

	assert.True(els[1].Fill.IsImage())
	assert.Equal(els[1].Fill, els[2].Fill)
	assert.True(out.TextureFill)

	require.Len(t, out.Objects, 1)
	assert.Equal(8, out.Objects[0].Width)
	assert.Equal(4, out.Objects[0].Height)
}

func TestGenerator_FontCollapse(t *testing.T) {
	assert := assert.New(t)
	g := NewGenerator("demo")
	font := stubFont{width: 6, height: 4}

	first := NewTextElement("first", image.Rect(0, 0, 20, 4), Number, font, "f", DefaultFontStyle, "3210")
	second := NewTextElement("second", image.Rect(0, 4, 20, 8), Number, font, "f", DefaultFontStyle, "12")

	require.NoError(t, g.AddScreen("main", filled(20, 8, color.NRGBA{A: 0xff}), first, second))
	out, err := g.Finish()
	require.NoError(t, err)

	require.Len(t, out.Fonts, 2)
	assert.Equal("_CG_demo_Fontmain_first", out.Fonts[0].ID)
	assert.Empty(out.Fonts[0].AliasOf)
	assert.Equal("_CG_demo_Fontmain_second", out.Fonts[1].ID)
	assert.Equal(out.Fonts[0].ID, out.Fonts[1].AliasOf)

	// Both elements draw with the surviving font.
	els := out.Screens[0].Elements
	assert.Equal(out.Fonts[0].ID, els[0].Font)
	assert.Equal(out.Fonts[0].ID, els[1].Font)

	require.Len(t, out.Pools, 1)
	assert.Equal(fontpool.PoolName("main_first"), out.Pools[0].Name)

	table := out.Fonts[0].Table
	assert.Equal("0123", table.Alphabet)
	assert.Equal(fontpool.Linear, table.Strategy)
	assert.Equal(int('0'), table.ASCIIOffset)
	assert.True(table.Monospace)
	assert.Equal(6, table.Width)
	assert.Equal(4, table.Height)
	assert.Equal(fontpool.CompressionQOI, table.Compression)
	assert.Equal([]fontpool.Compression{fontpool.CompressionQOI}, out.Compressions)
	assert.False(out.GBK)

	images := 0
	for _, img := range out.Images {
		images += len(img.Data)
	}
	assert.Equal(images+len(out.Pools[0].Data)+fontHeaderSize+len(table.ASCII)*4, out.DataSize)
}

func TestGenerator_MonochromeFont(t *testing.T) {
	assert := assert.New(t)
	g := NewGenerator("demo")

	style := DefaultFontStyle
	style.Compression = fontpool.CompressionMonochrome
	id, err := g.AddFont("mono", stubFont{width: 8, height: 2}, "AB", style)
	require.NoError(t, err)

	again, err := g.AddFont("mono", stubFont{width: 8, height: 2}, "xyz", style)
	require.NoError(t, err)
	assert.Equal(id, again)

	out, err := g.Finish()
	require.NoError(t, err)
	require.Len(t, out.Pools, 1)
	// One byte per row, two rows per glyph: 'A' = 0x41 and 'B' = 0x42 drawn LSB first.
	assert.Equal([]byte{0x82, 0x00, 0x42, 0x00}, out.Pools[0].Data)
	assert.Equal(fontpool.CompressionMonochrome, out.Fonts[0].Table.Compression)
}

func TestGenerator_GlyphHeightMismatch(t *testing.T) {
	g := NewGenerator("demo")
	_, err := g.AddFont("bad", stubFont{width: 6, height: 4, tall: '2'}, "123", DefaultFontStyle)
	require.Error(t, err)
	assert.Equal(t, utils.CodeFontConsistency, utils.ErrorCode(err))

	var pe errors.PlatformError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "bad", pe.Context()["font"])
	assert.Equal(t, "2", pe.Context()["char"])
}

func TestGenerator_ElementImages(t *testing.T) {
	assert := assert.New(t)
	g := NewGenerator("demo")

	on := filled(4, 4, color.NRGBA{G: 0xff, A: 0xff})
	off := filled(4, 4, color.NRGBA{R: 0x80, A: 0xff})
	warn := filled(4, 4, color.NRGBA{R: 0xff, G: 0xff, A: 0xff})

	status := NewImageElement("status", image.Rect(0, 0, 4, 4), off,
		ImageState{Condition: "== 1", Image: on},
		ImageState{Condition: "> 1", Image: warn},
	)
	led := NewGroupElement("led", image.Rect(4, 0, 8, 4), on, off)
	bar := NewBarElement("bar", image.Rect(0, 4, 8, 8), DirTop, on, off)

	require.NoError(t, g.AddScreen("main", filled(8, 8, color.NRGBA{A: 0xff}), status, led, bar))
	out, err := g.Finish()
	require.NoError(t, err)

	els := out.Screens[0].Elements
	require.Len(t, els, 3)

	assert.Equal(TypeImage, els[0].Type)
	require.Len(t, els[0].Images, 3)
	assert.Equal("== 1", els[0].Images[0].Key)
	assert.Equal("else", els[0].Images[2].Key)
	assert.Equal(els[0].Images[0].Image, els[1].Images[0].Image)

	assert.Equal(TypeGroup, els[1].Type)
	assert.Equal("full", els[1].Images[0].Key)
	assert.Equal("empty", els[1].Images[1].Key)

	assert.Equal(TypeBar, els[2].Type)
	assert.Equal(DirTop, els[2].Direction)
	assert.True(strings.HasPrefix(els[2].Images[0].Image, objectPrefix))

	// background, on, off and warn
	assert.Len(out.Images, 4)
	assert.Len(out.Objects, 2)
}

func TestGenerator_Errors(t *testing.T) {
	assert := assert.New(t)
	g := NewGenerator("demo")
	bg := filled(4, 4, color.NRGBA{A: 0xff})

	err := g.AddScreen("main", bg, NewGroupElement("led", image.Rect(0, 0, 2, 2), nil, bg))
	assert.Equal(utils.CodeInputShape, utils.ErrorCode(err))

	err = g.AddScreen("main", bg, NewTextElement("text", image.Rect(0, 0, 2, 2), String, nil, "f", DefaultFontStyle, "a"))
	assert.Equal(utils.CodeInputShape, utils.ErrorCode(err))

	_, err = g.AddFont("cjk", stubFont{width: 6, height: 4}, "a\U0001F600", DefaultFontStyle)
	assert.Equal(utils.CodeInputShape, utils.ErrorCode(err))

	_, err = g.Finish()
	require.NoError(t, err)
	_, err = g.Finish()
	assert.Error(err)
	assert.Error(g.AddScreen("late", bg))
}
