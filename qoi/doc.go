/*
Package qoi implements a QOI derived image codec tailored for RGB565 displays.

The stream has no header: width and height travel next to it. Every pixel is
written with the cheapest of five operators, tried in this order:

	RUN          0b11nnnnnn      repeat the previous pixel n+1 times (n < 61)
	TRANSPARENT  0xFF            alpha below 0xFF, colour is discarded
	INDEX        0b00iiiiii      colour found in the 64 entry table
	DIFF         0b01rrggbb      small delta from the previous colour
	LUMA         0b10gggggg rrrrbbbb
	RAW          0xFE hi lo      big-endian RGB565

Colours are quantized to 5-6-5 bits before hashing and diffing, so the
encoder state always matches what the decoder rebuilds and the error never
compounds. Partially transparent pixels are treated as fully transparent: the
target displays do not composite.

RUN compares the quantized pixels: transparent pixels of any colour, and
opaque pixels sharing one RGB565 value, extend the same run. Streams therefore
decode to the same pixels as those of an encoder comparing the raw RGBA values,
but are not byte for byte identical to them.
*/
package qoi
