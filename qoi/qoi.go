package qoi

import (
	"log/slog"
	"math"

	"github.com/esimov/cgui/utils"
)

const (
	opIndex       = 0x00 // 00xxxxxx
	opDiff        = 0x40 // 01xxxxxx
	opLuma        = 0x80 // 10xxxxxx
	opRun         = 0xC0 // 11xxxxxx
	opRaw         = 0xFE // 11111110
	opTransparent = 0xFF // 11111111

	mask2 = 0xC0

	// maxRun keeps the run byte clear of the RAW and TRANSPARENT markers.
	maxRun = 61

	tableSize = 64
)

// transparentKey is the normalized value of every non opaque pixel.
// It lies outside of the 16 bit RGB565 range.
const transparentKey uint32 = 1 << 16

// Image is an encoded stream together with the dimensions it was produced from.
type Image struct {
	Data   []byte
	Width  int
	Height int
}

// Encoder encodes RGBA8888 buffers.
// The zero value is not usable, create encoders with NewEncoder.
type Encoder struct {
	logger *slog.Logger
}

// Option customizes an Encoder.
type Option func(*Encoder)

// WithLogger sets the logger receiving the compression ratio warnings.
func WithLogger(l *slog.Logger) Option {
	return func(e *Encoder) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEncoder creates a new encoder.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{logger: utils.Logger()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RGB565 packs an 8 bit per channel colour into RGB565.
func RGB565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

// Expand565 unpacks an RGB565 value into 8 bit channels by left shifting each component.
func Expand565(c uint16) (r, g, b uint8) {
	return uint8(c>>11) << 3, uint8(c>>5&0x3F) << 2, uint8(c&0x1F) << 3
}

func split565(c uint16) (r, g, b int) {
	return int(c >> 11), int(c >> 5 & 0x3F), int(c & 0x1F)
}

func hash(r, g, b int) int {
	return (r*3 + g*5 + b*7) & (tableSize - 1)
}

// normalize maps a pixel to the value compared by the RUN operator.
func normalize(p []byte) uint32 {
	if p[3] != 0xFF {
		return transparentKey
	}
	return uint32(RGB565(p[0], p[1], p[2]))
}

// Encode encodes the RGBA8888 pixels in raster order.
// The buffer length must be a non zero multiple of 4.
func (e *Encoder) Encode(pix []byte) ([]byte, error) {
	if len(pix) == 0 || len(pix)%4 != 0 {
		return nil, utils.InputShapeError("buffer size must be a multiple of 4, got %d", len(pix))
	}

	var (
		index     [tableSize]uint16
		prev      uint32 // opaque black
		prevColor uint16
		pixels    = len(pix) / 4
		out       = make([]byte, 0, len(pix)/4)
	)

	for i := 0; i < pixels; {
		cur := normalize(pix[i*4:])

		if cur == prev {
			run := 1
			i++
			for i < pixels && run < maxRun && normalize(pix[i*4:]) == cur {
				run++
				i++
			}
			out = append(out, opRun|byte(run-1))
			continue
		}
		prev = cur
		i++

		if cur == transparentKey {
			out = append(out, opTransparent)
			continue
		}

		c := uint16(cur)
		r, g, b := split565(c)
		h := hash(r, g, b)
		if index[h] == c {
			out = append(out, opIndex|byte(h))
			prevColor = c
			continue
		}
		index[h] = c

		pr, pg, pb := split565(prevColor)
		dr, dg, db := r-pr, g-pg, b-pb

		switch {
		case dr >= -2 && dr <= 1 && dg >= -2 && dg <= 1 && db >= -2 && db <= 1:
			out = append(out, opDiff|byte(dr+2)<<4|byte(dg+2)<<2|byte(db+2))
		case dg >= -32 && dg <= 31 && dr-dg >= -8 && dr-dg <= 7 && db-dg >= -8 && db-dg <= 7:
			out = append(out, opLuma|byte(dg+32), byte(dr-dg+8)<<4|byte(db-dg+8))
		default:
			out = append(out, opRaw, byte(c>>8), byte(c))
		}
		prevColor = c
	}

	// Raw RGB565 takes two bytes per pixel; warn above two thirds of that.
	if raw := pixels * 2; len(out)*3 > raw*2 {
		e.logger.Warn("poor image compression",
			"raw", raw,
			"encoded", len(out),
			"ratio", float64(len(out))/float64(raw),
		)
	}
	return out, nil
}

// Decode decodes exactly width*height pixels into an RGBA8888 buffer.
// Trailing bytes after the last pixel are ignored.
func Decode(data []byte, width, height int) ([]byte, error) {
	if width < 0 || height < 0 {
		return nil, utils.InputShapeError("invalid image size %dx%d", width, height)
	}
	if height > 0 && width > math.MaxInt/4/height {
		return nil, utils.InputShapeError("image size %dx%d overflows", width, height)
	}

	var (
		index   [tableSize]uint16
		r, g, b int
		a       byte = 0xFF
		pixels       = width * height
		// A single byte expands to at most maxRun+1 pixels.
		out = make([]byte, 0, min(pixels, len(data)*(maxRun+1))*4)
		pos int
	)

	emit := func(n int) {
		pr, pg, pb := byte(r<<3), byte(g<<2), byte(b<<3)
		for ; n > 0 && len(out) < pixels*4; n-- {
			out = append(out, pr, pg, pb, a)
		}
	}

	for len(out) < pixels*4 {
		if pos >= len(data) {
			return nil, utils.CorruptDataError("stream ended after %d of %d pixels", len(out)/4, pixels)
		}
		b1 := data[pos]
		pos++

		switch b1 & mask2 {
		case opIndex:
			r, g, b = split565(index[b1&0x3F])
			a = 0xFF
		case opDiff:
			r = (r + int(b1>>4&3) - 2) & 0x1F
			g = (g + int(b1>>2&3) - 2) & 0x3F
			b = (b + int(b1&3) - 2) & 0x1F
			a = 0xFF
		case opLuma:
			if pos >= len(data) {
				return nil, utils.CorruptDataError("truncated LUMA operator at byte %d", pos-1)
			}
			b2 := data[pos]
			pos++
			vg := int(b1&0x3F) - 32
			r = (r + vg - 8 + int(b2>>4)) & 0x1F
			g = (g + vg) & 0x3F
			b = (b + vg - 8 + int(b2&0x0F)) & 0x1F
			a = 0xFF
		default:
			switch b1 {
			case opTransparent:
				a = 0
				emit(1)
				continue
			case opRaw:
				if pos+1 >= len(data) {
					return nil, utils.CorruptDataError("truncated RAW operator at byte %d", pos-1)
				}
				r, g, b = split565(uint16(data[pos])<<8 | uint16(data[pos+1]))
				pos += 2
				a = 0xFF
			default:
				emit(int(b1&0x3F) + 1)
				continue
			}
		}

		index[hash(r, g, b)] = uint16(r<<11 | g<<5 | b)
		emit(1)
	}
	return out, nil
}
