package packbits

import (
	"image"
	"image/color"

	"github.com/esimov/cgui/utils"
)

// RowBytes returns the number of bytes of a packed row of the given width.
func RowBytes(width int) int {
	return (width + 7) / 8
}

// PackMonochrome packs img into 1 bit per pixel rows, most significant bit
// first, each row padded to a whole byte. A bit is set when the luminance of
// the pixel composited over black is above threshold.
func PackMonochrome(img *image.NRGBA, threshold uint8) []byte {
	var (
		bounds = img.Bounds()
		dx     = bounds.Dx()
		dy     = bounds.Dy()
		stride = RowBytes(dx)
		bits   = make([]byte, stride*dy)
	)

	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			i := img.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			p := img.Pix[i : i+4 : i+4]
			lum := (299*int(p[0]) + 587*int(p[1]) + 114*int(p[2])) / 1000
			if lum*int(p[3])/0xff > int(threshold) {
				bits[y*stride+x/8] |= 0x80 >> (x % 8)
			}
		}
	}
	return bits
}

// UnpackMonochrome expands packed rows back to an image: set bits become
// opaque white, cleared bits transparent.
func UnpackMonochrome(bits []byte, width, height int) (*image.NRGBA, error) {
	if width < 0 || height < 0 {
		return nil, utils.InputShapeError("invalid bitmap size %dx%d", width, height)
	}
	stride := RowBytes(width)
	if len(bits) < stride*height {
		return nil, utils.InputShapeError("bitmap %dx%d needs %d bytes, got %d", width, height, stride*height, len(bits))
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if bits[y*stride+x/8]&(0x80>>(x%8)) != 0 {
				dst.SetNRGBA(x, y, white)
			}
		}
	}
	return dst, nil
}
