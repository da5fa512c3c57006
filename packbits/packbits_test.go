package packbits

import (
	"bytes"
	"image"
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/esimov/cgui/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackBits_Compress(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected []byte
	}{
		{"empty", []byte{}, []byte{}},
		{"single", []byte{9}, []byte{0x00, 9}},
		{
			"mixed",
			[]byte{0x00, 0x00, 0x00, 0x00, 0xFF, 0xAA, 0xBB, 0xBB, 0xBB},
			[]byte{0xFD, 0x00, 0x01, 0xFF, 0xAA, 0xFE, 0xBB},
		},
		{"short repeat stays literal", []byte{5, 5, 1}, []byte{0x02, 5, 5, 1}},
		{
			"run spanning blocks",
			bytes.Repeat([]byte{0x42}, 300),
			[]byte{0x81, 0x42, 0x81, 0x42, 0xD5, 0x42},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compress(tt.data)
			assert.Equal(t, tt.expected, res)

			dec, err := Decompress(res)
			require.NoError(t, err)
			assert.Equal(t, tt.data, dec)
		})
	}
}

func TestPackBits_Alternating(t *testing.T) {
	assert := assert.New(t)

	data := make([]byte, 200)
	for i := range data {
		data[i] = byte(i % 2)
	}

	res := Compress(data)
	assert.Len(res, 202)
	assert.Equal(byte(0x7F), res[0])
	assert.Equal(byte(0x47), res[129])

	dec, err := Decompress(res)
	assert.NoError(err)
	assert.Equal(data, dec)
}

func TestPackBits_Decompress(t *testing.T) {
	assert := assert.New(t)

	dec, err := Decompress([]byte{0x80, 0x00, 7, 0xFF, 3})
	assert.NoError(err)
	assert.Equal([]byte{7, 3, 3}, dec)

	for _, data := range [][]byte{{0x02, 1}, {0xFE}, {0x00}} {
		_, err = Decompress(data)
		assert.Error(err)
		assert.Equal(utils.CodeCorruptData, utils.ErrorCode(err))
	}
}

func TestPackBits_RoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewPCG(7, 11))

	for n := 0; n < 1500; n += 61 {
		data := make([]byte, 0, n)
		for len(data) < n {
			v := byte(rnd.IntN(4))
			for k := rnd.IntN(200); k >= 0 && len(data) < n; k-- {
				data = append(data, v)
			}
			data = append(data, byte(rnd.IntN(256)))
		}
		data = data[:n]

		dec, err := Decompress(Compress(data))
		require.NoError(t, err)
		assert.Equal(t, data, dec)
	}
}

func TestPackBits_Monochrome(t *testing.T) {
	assert := assert.New(t)

	img := image.NewNRGBA(image.Rect(0, 0, 10, 2))
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	img.SetNRGBA(0, 0, white)
	img.SetNRGBA(9, 0, white)
	img.SetNRGBA(3, 1, white)
	// dark and faint pixels stay cleared
	img.SetNRGBA(4, 1, color.NRGBA{R: 20, G: 20, B: 20, A: 0xff})
	img.SetNRGBA(5, 1, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x10})

	assert.Equal(2, RowBytes(10))
	bits := PackMonochrome(img, 0x7f)
	assert.Equal([]byte{0x80, 0x40, 0x10, 0x00}, bits)

	res, err := UnpackMonochrome(bits, 10, 2)
	assert.NoError(err)
	assert.Equal(white, res.NRGBAAt(0, 0))
	assert.Equal(white, res.NRGBAAt(9, 0))
	assert.Equal(white, res.NRGBAAt(3, 1))
	assert.Equal(color.NRGBA{}, res.NRGBAAt(4, 1))
	assert.Equal(color.NRGBA{}, res.NRGBAAt(5, 1))

	_, err = UnpackMonochrome(bits[:3], 10, 2)
	assert.Equal(utils.CodeInputShape, utils.ErrorCode(err))
}
