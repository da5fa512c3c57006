package cgui

import (
	"fmt"
	"image"
	"image/color"

	"github.com/esimov/cgui/fontpool"
	"github.com/esimov/cgui/imop"
	"github.com/esimov/cgui/packbits"
	"github.com/esimov/cgui/utils"
	"github.com/jmgilman/go/errors"
)

// GlyphSource renders single characters. The returned image is a coverage
// mask: white pixels whose alpha is the ink coverage.
type GlyphSource interface {
	Glyph(ch rune) (*image.NRGBA, error)
}

// FontStyle controls how glyph masks become stored pixels.
type FontStyle struct {
	Foreground color.NRGBA
	// Background is composited behind the glyphs unless its alpha is zero,
	// in which case uncovered pixels stay transparent.
	Background  color.NRGBA
	Compression fontpool.Compression
	// Threshold is the luminance above which a pixel is set in monochrome glyphs.
	Threshold uint8
}

// DefaultFontStyle is white ink on a transparent background, QOI encoded.
var DefaultFontStyle = FontStyle{
	Foreground:  color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	Compression: fontpool.CompressionQOI,
	Threshold:   127,
}

// FontID returns the symbol of a font of the generation.
func (g *Generator) FontID(name string) string {
	return fmt.Sprintf("_CG_%s_Font%s", g.name, name)
}

// AddFont renders every character of alphabet with src and places the
// glyphs in the font pool named name. Adding the same name twice returns
// the first font.
func (g *Generator) AddFont(name string, src GlyphSource, alphabet string, style FontStyle) (string, error) {
	if g.finished {
		return "", errors.New(errors.CodeConflict, "generation already finished")
	}
	if id, ok := g.fontIDs[name]; ok {
		return id, nil
	}
	if src == nil {
		return "", errors.WithContext(utils.InputShapeError("font %s has no glyph source", name), "font", name)
	}

	chars, err := fontpool.SortAlphabet(alphabet)
	if err != nil {
		return "", errors.WithContext(err, "font", name)
	}

	b := g.pool.NewBuilder(name, style.Compression)
	for _, ch := range chars {
		mask, err := src.Glyph(ch)
		if err != nil {
			return "", errors.WithContext(err, "font", name)
		}
		glyph, err := g.renderGlyph(mask, style)
		if err != nil {
			return "", errors.WithContext(errors.WithContext(err, "font", name), "char", string(ch))
		}
		if err := b.Add(ch, glyph); err != nil {
			return "", err
		}
	}

	id := g.FontID(name)
	g.fontIDs[name] = id
	g.fonts = append(g.fonts, fontRef{id: id, builder: b})
	g.logger.Debug("font added", "font", name, "glyphs", b.Len())
	return id, nil
}

func (g *Generator) renderGlyph(mask *image.NRGBA, style FontStyle) (fontpool.Glyph, error) {
	bounds := mask.Bounds()
	glyph := fontpool.Glyph{Width: bounds.Dx(), Height: bounds.Dy()}

	switch style.Compression {
	case fontpool.CompressionMonochrome:
		glyph.Data = packbits.PackMonochrome(mask, style.Threshold)
	case fontpool.CompressionPackBits:
		glyph.Data = packbits.Compress(packbits.PackMonochrome(mask, style.Threshold))
	default:
		img := imop.Tint(mask, style.Foreground)
		if style.Background.A != 0 {
			img = imop.Fill(img, style.Background)
		}
		enc, err := g.encoder.EncodeImage(img)
		if err != nil {
			return glyph, err
		}
		glyph.Data = enc.Data
	}
	return glyph, nil
}
