package imop

import (
	"image"
	"image/color"
)

// ToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0)
// and a tightly packed pixel buffer.
func ToNRGBA(img image.Image) *image.NRGBA {
	srcBounds := img.Bounds()
	if src0, ok := img.(*image.NRGBA); ok && srcBounds.Min == (image.Point{}) && src0.Stride == srcBounds.Dx()*4 {
		return src0
	}
	srcMinX := srcBounds.Min.X
	srcMinY := srcBounds.Min.Y

	dstBounds := srcBounds.Sub(srcBounds.Min)
	dstW := dstBounds.Dx()
	dstH := dstBounds.Dy()
	dst := image.NewNRGBA(dstBounds)

	switch src := img.(type) {
	case *image.NRGBA:
		rowSize := dstW * 4
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
		}
	case *image.YCbCr:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				srcX := srcMinX + dstX
				srcY := srcMinY + dstY
				siy := src.YOffset(srcX, srcY)
				sic := src.COffset(srcX, srcY)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				dst.Pix[di+0] = r
				dst.Pix[di+1] = g
				dst.Pix[di+2] = b
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	default:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				c := color.NRGBAModel.Convert(img.At(srcMinX+dstX, srcMinY+dstY)).(color.NRGBA)
				dst.Pix[di+0] = c.R
				dst.Pix[di+1] = c.G
				dst.Pix[di+2] = c.B
				dst.Pix[di+3] = c.A
				di += 4
			}
		}
	}

	return dst
}

// Flatten composites the partially transparent pixels of img over the bg colour.
// Fully transparent and fully opaque pixels are left untouched.
func Flatten(img *image.NRGBA, bg color.NRGBA) *image.NRGBA {
	return flatten(img, bg, func(a uint8) bool { return a != 0 && a != 0xff })
}

// Fill composites every pixel of img over the bg colour.
func Fill(img *image.NRGBA, bg color.NRGBA) *image.NRGBA {
	return flatten(img, bg, func(a uint8) bool { return a != 0xff })
}

func flatten(img *image.NRGBA, bg color.NRGBA, match func(uint8) bool) *image.NRGBA {
	dst := image.NewNRGBA(img.Bounds())
	copy(dst.Pix, img.Pix)

	op := InitOp()
	backdrop := []uint8{bg.R, bg.G, bg.B, bg.A}
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		if !match(dst.Pix[i+3]) {
			continue
		}
		c := op.mix(dst.Pix[i:i+4:i+4], backdrop, nil)
		dst.Pix[i+0], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return dst
}

// Tint colours a coverage mask with fg: the result carries the colour of fg
// and the alpha of the mask.
func Tint(mask *image.NRGBA, fg color.NRGBA) *image.NRGBA {
	fg.A = 0xff
	backdrop := image.NewNRGBA(mask.Bounds())
	for i := 0; i < len(backdrop.Pix); i += 4 {
		backdrop.Pix[i+0], backdrop.Pix[i+1], backdrop.Pix[i+2], backdrop.Pix[i+3] = fg.R, fg.G, fg.B, fg.A
	}

	blend := NewBlend()
	_ = blend.Set(Multiply)
	op := InitOp()
	_ = op.Set(SrcIn)

	bmp := NewBitmap(mask.Bounds())
	op.Draw(bmp, mask, backdrop, blend)
	return bmp.Img
}

// IsUniform reports whether every pixel of img has the same value,
// returning that value when it does.
func IsUniform(img *image.NRGBA) (color.NRGBA, bool) {
	b := img.Bounds()
	if b.Empty() {
		return color.NRGBA{}, false
	}
	first := img.PixOffset(b.Min.X, b.Min.Y)
	ref := img.Pix[first : first+4]
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			p := img.Pix[i : i+4]
			if p[0] != ref[0] || p[1] != ref[1] || p[2] != ref[2] || p[3] != ref[3] {
				return color.NRGBA{}, false
			}
		}
	}
	return color.NRGBA{R: ref[0], G: ref[1], B: ref[2], A: ref[3]}, true
}
