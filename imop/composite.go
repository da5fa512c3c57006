package imop

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/esimov/cgui/utils"
)

const (
	Clear   = "clear"
	Copy    = "copy"
	Dst     = "dst"
	SrcOver = "src_over"
	DstOver = "dst_over"
	SrcIn   = "src_in"
	DstIn   = "dst_in"
	SrcOut  = "src_out"
	DstOut  = "dst_out"
	SrcAtop = "src_atop"
	DstAtop = "dst_atop"
	Xor     = "xor"
)

var compositeOps = []string{
	Clear, Copy, Dst, SrcOver, DstOver, SrcIn, DstIn, SrcOut, DstOut, SrcAtop, DstAtop, Xor,
}

// Bitmap is the destination of a composition.
type Bitmap struct {
	Img *image.NRGBA
}

// Composite holds the currently active composition operator.
type Composite struct {
	current string
}

// NewBitmap creates a transparent bitmap of the given size.
func NewBitmap(rect image.Rectangle) *Bitmap {
	return &Bitmap{
		Img: image.NewNRGBA(rect),
	}
}

// InitOp initializes a composition with SrcOver as the active operator.
func InitOp() *Composite {
	return &Composite{current: SrcOver}
}

// Set activates one of the supported composition operators.
func (op *Composite) Set(cop string) error {
	if !utils.Contains(compositeOps, cop) {
		return fmt.Errorf("unsupported composite operation: %q", cop)
	}
	op.current = cop
	return nil
}

// Get returns the active composition operator.
func (op *Composite) Get() string {
	return op.current
}

// Draw composites src over the dst backdrop into bitmap, optionally mixing the
// colours with a blend mode first. All three images must share the same bounds.
func (op *Composite) Draw(bitmap *Bitmap, src, dst *image.NRGBA, blend *Blend) {
	if bitmap == nil {
		bitmap = NewBitmap(src.Bounds())
	}
	b := src.Bounds()

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := src.PixOffset(x, y)
			di := dst.PixOffset(x, y)
			bi := bitmap.Img.PixOffset(x, y)

			c := op.mix(
				src.Pix[si:si+4:si+4],
				dst.Pix[di:di+4:di+4],
				blend,
			)
			copy(bitmap.Img.Pix[bi:bi+4], []uint8{c.R, c.G, c.B, c.A})
		}
	}
}

func (op *Composite) mix(s, d []uint8, blend *Blend) color.NRGBA {
	var (
		cs = [3]float64{float64(s[0]) / 255, float64(s[1]) / 255, float64(s[2]) / 255}
		cb = [3]float64{float64(d[0]) / 255, float64(d[1]) / 255, float64(d[2]) / 255}
		as = float64(s[3]) / 255
		ab = float64(d[3]) / 255
	)

	// A blend mode replaces the source colour where the backdrop is present.
	if blend != nil && blend.OpType != "" {
		for i := range cs {
			cs[i] = (1-ab)*cs[i] + ab*blend.apply(cb[i], cs[i])
		}
	}

	// Porter-Duff coefficients for the source and the backdrop.
	var fa, fb float64
	switch op.current {
	case Clear:
		fa, fb = 0, 0
	case Copy:
		fa, fb = 1, 0
	case Dst:
		fa, fb = 0, 1
	case SrcOver:
		fa, fb = 1, 1-as
	case DstOver:
		fa, fb = 1-ab, 1
	case SrcIn:
		fa, fb = ab, 0
	case DstIn:
		fa, fb = 0, as
	case SrcOut:
		fa, fb = 1-ab, 0
	case DstOut:
		fa, fb = 0, 1-as
	case SrcAtop:
		fa, fb = ab, 1-as
	case DstAtop:
		fa, fb = 1-ab, as
	case Xor:
		fa, fb = 1-ab, 1-as
	}

	ao := as*fa + ab*fb
	if ao == 0 {
		return color.NRGBA{}
	}

	var out [3]uint8
	for i := range out {
		co := (as*fa*cs[i] + ab*fb*cb[i]) / ao
		out[i] = toByte(co)
	}
	return color.NRGBA{R: out[0], G: out[1], B: out[2], A: toByte(ao)}
}

func toByte(v float64) uint8 {
	return uint8(utils.Clamp(math.Round(v*255), 0, 255))
}
