package qoi

import (
	"image"

	"github.com/esimov/cgui/imop"
	"github.com/esimov/cgui/utils"
)

// EncodeImage converts img to NRGBA and encodes its pixels.
func (e *Encoder) EncodeImage(img image.Image) (*Image, error) {
	src := imop.ToNRGBA(img)
	b := src.Bounds()
	if b.Empty() {
		return nil, utils.InputShapeError("empty image %dx%d", b.Dx(), b.Dy())
	}

	data, err := e.Encode(src.Pix)
	if err != nil {
		return nil, err
	}
	return &Image{Data: data, Width: b.Dx(), Height: b.Dy()}, nil
}

// DecodeImage decodes an encoded stream into an image of the given size.
func DecodeImage(data []byte, width, height int) (*image.NRGBA, error) {
	pix, err := Decode(data, width, height)
	if err != nil {
		return nil, err
	}
	return &image.NRGBA{
		Pix:    pix,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}, nil
}
