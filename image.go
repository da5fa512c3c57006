package cgui

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/esimov/cgui/imop"
	"github.com/esimov/cgui/utils"
	"golang.org/x/image/bmp"
)

// DecodeImage decodes an encoded PNG, JPEG, GIF or BMP image.
func DecodeImage(data []byte) (image.Image, error) {
	if !strings.Contains(utils.DetectContentType(data), "image") {
		return nil, utils.InputShapeError("the source should be an image file")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not decode the image: %w", err)
	}
	return img, nil
}

// FitImage scales img to exactly width x height pixels.
// Images already at that size are only converted.
func FitImage(img image.Image, width, height int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return imop.ToNRGBA(img)
	}
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// Composition selects how an element image is drawn over the screen.
type Composition struct {
	// KeepAlpha keeps the transparency of the image; only partially
	// transparent pixels are flattened over Screen so that the display can
	// blend them itself. Operator and Blend are ignored.
	KeepAlpha bool
	// Operator is one of the imop Porter-Duff operators. Empty means src_over.
	Operator string
	// Blend is an optional imop blend mode.
	Blend string
	// Screen fills the parts of the element outside of the background.
	Screen color.NRGBA
}

// ComposeElement scales img to the element area and draws it over the part
// of the screen background it covers.
func ComposeElement(bg *image.NRGBA, img image.Image, rect image.Rectangle, c Composition) (*image.NRGBA, error) {
	src := FitImage(img, rect.Dx(), rect.Dy())
	if c.KeepAlpha {
		return imop.Flatten(src, c.Screen), nil
	}

	op := imop.InitOp()
	if c.Operator != "" {
		if err := op.Set(c.Operator); err != nil {
			return nil, utils.InputShapeError("%v", err)
		}
	}
	var blend *imop.Blend
	if c.Blend != "" {
		blend = imop.NewBlend()
		if err := blend.Set(c.Blend); err != nil {
			return nil, utils.InputShapeError("%v", err)
		}
	}

	backdrop := imaging.Crop(bg, rect)
	if backdrop.Bounds().Dx() != rect.Dx() || backdrop.Bounds().Dy() != rect.Dy() {
		// The element spills out of the background; fill the rest with the screen color.
		full := imaging.New(rect.Dx(), rect.Dy(), c.Screen)
		backdrop = imaging.Paste(full, backdrop, image.Point{})
	}

	dst := imop.NewBitmap(src.Bounds())
	op.Draw(dst, src, backdrop, blend)
	return dst.Img, nil
}

// UniformImage returns a width x height image filled with c.
func UniformImage(width, height int, c color.NRGBA) *image.NRGBA {
	return imaging.New(width, height, c)
}

// SaveImage encodes img into path, choosing the format by file extension.
func SaveImage(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create the destination file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	switch filepath.Ext(path) {
	case "", ".png":
		return png.Encode(f, img)
	case ".jpg", ".jpeg":
		return jpeg.Encode(f, img, &jpeg.Options{Quality: 100})
	case ".bmp":
		return bmp.Encode(f, img)
	default:
		return errors.New("unsupported image format")
	}
}
