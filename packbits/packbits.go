// Package packbits implements the PackBits run-length codec used for
// monochrome glyph bitmaps, together with the 1 bit per pixel packing
// that produces those bitmaps.
package packbits

import (
	"github.com/esimov/cgui/utils"
)

const (
	maxPacket = 128
	minRun    = 3
	nop       = -128
)

// Compress encodes data as a sequence of PackBits packets. Runs of at least
// three identical bytes become repeat packets, everything else is copied in
// literal packets of up to 128 bytes.
func Compress(data []byte) []byte {
	out := make([]byte, 0, len(data)+len(data)/maxPacket+1)

	for i := 0; i < len(data); {
		run := 1
		for run < maxPacket && i+run < len(data) && data[i+run] == data[i] {
			run++
		}

		if run >= minRun {
			out = append(out, byte(257-run), data[i])
			i += run
			continue
		}

		n := 0
		for n < maxPacket && i+n < len(data) {
			j := i + n
			if j+2 < len(data) && data[j] == data[j+1] && data[j] == data[j+2] {
				break
			}
			n++
		}
		out = append(out, byte(n-1))
		out = append(out, data[i:i+n]...)
		i += n
	}
	return out
}

// Decompress decodes a PackBits stream.
func Decompress(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)*2)

	for i := 0; i < len(data); {
		header := int(int8(data[i]))
		i++

		switch {
		case header >= 0:
			n := header + 1
			if i+n > len(data) {
				return nil, utils.CorruptDataError("literal packet of %d bytes at offset %d exceeds the input", n, i-1)
			}
			out = append(out, data[i:i+n]...)
			i += n
		case header == nop:
		default:
			if i >= len(data) {
				return nil, utils.CorruptDataError("repeat packet at offset %d has no value", i-1)
			}
			v := data[i]
			i++
			for n := 1 - header; n > 0; n-- {
				out = append(out, v)
			}
		}
	}
	return out, nil
}
