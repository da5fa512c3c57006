// Package raster renders font glyphs into coverage masks, one image per character.
// Every glyph of a face has the same height, the line height of the face,
// and is as wide as its rounded advance.
package raster

import (
	"fmt"
	"image"
	"os"

	"github.com/jmgilman/go/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Face renders the glyphs of a TrueType or OpenType font at a fixed size.
type Face struct {
	face    font.Face
	ascent  int
	height  int
	hinting font.Hinting
}

// Open loads a font file and creates a face of the given size.
func Open(path string, size, dpi float64) (*Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read the font file: %w", err)
	}
	return NewFace(data, size, dpi)
}

// NewFace parses font data and creates a face of the given size.
func NewFace(data []byte, size, dpi float64) (*Face, error) {
	if size <= 0 || dpi <= 0 {
		return nil, errors.Newf(errors.CodeInvalidInput, "invalid font size %v at %v dpi", size, dpi)
	}
	otf, err := opentype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "could not parse the font")
	}

	face, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "could not create the font face")
	}

	m := face.Metrics()
	return &Face{
		face:    face,
		ascent:  m.Ascent.Ceil(),
		height:  m.Ascent.Ceil() + m.Descent.Ceil(),
		hinting: font.HintingFull,
	}, nil
}

// Height returns the height of every glyph rendered by the face.
func (f *Face) Height() int {
	return f.height
}

// Glyph renders ch as white coverage on a transparent background.
func (f *Face) Glyph(ch rune) (*image.NRGBA, error) {
	advance, ok := f.face.GlyphAdvance(ch)
	if !ok {
		return nil, errors.WithContext(
			errors.Newf(errors.CodeNotFound, "font has no glyph for %q", ch),
			"char", string(ch),
		)
	}
	width := advance.Round()
	if width < 1 {
		width = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, f.height))
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: f.face,
		Dot:  fixed.P(0, f.ascent),
	}
	d.DrawString(string(ch))
	return dst, nil
}

// Close releases the face.
func (f *Face) Close() error {
	return f.face.Close()
}
