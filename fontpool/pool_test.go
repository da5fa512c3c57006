package fontpool

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func glyph(seed byte, n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = seed + byte(i)
	}
	return data
}

func TestPool_SameGlyphSameOffset(t *testing.T) {
	assert := assert.New(t)
	p := New()

	first, err := p.Place(glyph(1, 10), "Sans", 'a', 6)
	assert.NoError(err)
	second, err := p.Place(glyph(2, 12), "Sans", 'b', 6)
	assert.NoError(err)
	again, err := p.Place(glyph(1, 10), "Sans", 'c', 6)
	assert.NoError(err)

	assert.Same(first, again)

	name, off := first.Resolve()
	assert.Equal("CG_FontData_Sans", name)
	assert.Equal(0, off)
	_, off = second.Resolve()
	assert.Equal(10, off)
	assert.Equal(22, p.Size("Sans"))
}

func TestPool_Merge(t *testing.T) {
	assert := assert.New(t)
	p := New()

	a1, _ := p.Place(glyph(1, 10), "A", 'x', 5)
	a2, _ := p.Place(glyph(2, 7), "A", 'y', 5)
	b1, err := p.Place(glyph(50, 4), "B", 'z', 5)
	require.NoError(t, err)

	name, off := b1.Resolve()
	assert.Equal("CG_FontData_B", name)
	assert.Equal(0, off)

	// B renders a glyph A already holds: B is the same typeface.
	b2, err := p.Place(glyph(2, 7), "B", 'y', 5)
	require.NoError(t, err)
	assert.Same(a2, b2)

	name, off = b1.Resolve()
	assert.Equal("CG_FontData_A", name)
	assert.Equal(17, off, "shifted by the pre-merge size of A")

	_, off = a1.Resolve()
	assert.Equal(0, off)

	assert.Equal("A", p.Canonical("B"))
	assert.Equal(21, p.Size("B"))

	// Later glyphs of B land in the merged pool.
	b3, _ := p.Place(glyph(90, 3), "B", 'w', 5)
	name, off = b3.Resolve()
	assert.Equal("CG_FontData_A", name)
	assert.Equal(21, off)

	// Content B stored before the merge is shared with A afterwards.
	a3, _ := p.Place(glyph(50, 4), "A", 'q', 5)
	assert.Same(b1, a3)

	pools := p.Pools()
	require.Len(t, pools, 1)
	assert.Equal("A", pools[0].Font)
	expected := bytes.Join([][]byte{glyph(1, 10), glyph(2, 7), glyph(50, 4), glyph(90, 3)}, nil)
	assert.Equal(expected, pools[0].Data)
}

func TestPool_ChainedMerge(t *testing.T) {
	assert := assert.New(t)
	p := New()

	_, _ = p.Place(glyph(1, 5), "A", 'a', 1)
	_, _ = p.Place(glyph(2, 5), "B", 'b', 1)
	c1, _ := p.Place(glyph(3, 5), "C", 'c', 1)

	// C joins B, then B joins A.
	_, _ = p.Place(glyph(2, 5), "C", 'b', 1)
	_, _ = p.Place(glyph(1, 5), "B", 'a', 1)

	assert.Equal("A", p.Canonical("C"))
	name, off := c1.Resolve()
	assert.Equal("CG_FontData_A", name)
	assert.Equal(10, off)
	assert.Len(p.Pools(), 1)
}

func TestPool_SpaceDoesNotMerge(t *testing.T) {
	assert := assert.New(t)
	p := New()

	blank := make([]byte, 8)
	_, _ = p.Place(blank, "A", ' ', 4)
	sp, err := p.Place(blank, "B", ' ', 4)
	assert.NoError(err)

	name, off := sp.Resolve()
	assert.Equal("CG_FontData_B", name)
	assert.Equal(0, off)
	assert.Equal("B", p.Canonical("B"))
	assert.Len(p.Pools(), 2)
}

func TestPool_CapacityWarning(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	p := New(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	for i := 0; i < 70; i++ {
		data := make([]byte, 1000)
		data[0], data[1] = byte(i), byte(i>>8)
		_, err := p.Place(data, "Big", rune('A'+i), 8)
		require.NoError(t, err)

		if (i+1)*1000 > MaxPoolSize {
			assert.Len(p.Warnings(), 1, "glyph %d", i)
		} else {
			assert.Empty(p.Warnings(), "glyph %d", i)
		}
	}

	w := p.Warnings()[0]
	assert.Equal("CG_FontData_Big", w.Pool)
	assert.Equal(66000, w.Size)
	assert.Equal(MaxPoolSize, w.Limit)
	assert.Equal(1, bytes.Count(buf.Bytes(), []byte("level=WARN")))
}

func TestPool_NilGlyph(t *testing.T) {
	_, err := New().Place(nil, "A", 'a', 1)
	assert.Error(t, err)
}

func TestPool_Canonical(t *testing.T) {
	p := New()
	p.aliases["a"] = "b"
	p.aliases["b"] = "a"

	// A corrupted alias graph still terminates.
	assert.NotEmpty(t, p.Canonical("a"))
	assert.Equal(t, "z", p.Canonical("z"))
}
