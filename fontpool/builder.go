package fontpool

import (
	"slices"

	"github.com/esimov/cgui/utils"
	"github.com/jmgilman/go/errors"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// Undefined marks an empty slot of a LINEAR table.
const Undefined = 0xFFFF

// Compression is the encoding of the glyph bitmaps of a font.
type Compression int

const (
	CompressionQOI Compression = iota
	CompressionPackBits
	CompressionMonochrome
)

func (c Compression) String() string {
	switch c {
	case CompressionPackBits:
		return "CG_Compression_PackBits"
	case CompressionMonochrome:
		return "CG_Compression_Monochrome"
	}
	return "CG_Compression_QOI"
}

// Glyph is an encoded character bitmap.
type Glyph struct {
	Data   []byte
	Width  int
	Height int
}

// Entry is one character of a lookup table.
type Entry struct {
	Code   int
	Char   rune
	Offset int
	Width  int
}

// Table is the resolved lookup data of one font.
type Table struct {
	Font     string
	Alphabet string
	Pool     string

	Strategy Strategy
	// ASCII holds single byte characters. LINEAR tables have a slot for every
	// code starting at ASCIIOffset, with Undefined offsets in the gaps.
	ASCII       []Entry
	ASCIIOffset int
	// GBK holds double byte characters, always sorted for bisection.
	GBK []Entry

	Monospace   bool
	Width       int
	Height      int
	Compression Compression
}

type glyphRef struct {
	ch        rune
	code      int
	wide      bool
	width     int
	placement *Placement
}

// Builder collects the glyphs of one logical font.
type Builder struct {
	pool        *Pool
	name        string
	compression Compression

	glyphs    []glyphRef
	seen      map[rune]struct{}
	width     int
	height    int
	monospace bool
}

// NewBuilder starts a font named name whose glyphs go to the pool of the same name.
func (p *Pool) NewBuilder(name string, compression Compression) *Builder {
	return &Builder{
		pool:        p,
		name:        name,
		compression: compression,
		seen:        make(map[rune]struct{}),
		monospace:   true,
	}
}

// Name returns the font name.
func (b *Builder) Name() string {
	return b.name
}

// CharCode returns the lookup code of a character and whether it belongs to
// the double byte table. Characters above 0xFF are encoded as GBK, lead byte first.
func CharCode(ch rune) (code int, wide bool, err error) {
	if ch >= 0 && ch <= 0xFF {
		return int(ch), false, nil
	}
	enc, err := simplifiedchinese.GBK.NewEncoder().String(string(ch))
	if err != nil || len(enc) != 2 {
		return 0, false, utils.InputShapeError("character %q has no double byte encoding", ch)
	}
	return int(enc[0])<<8 | int(enc[1]), true, nil
}

// SortAlphabet removes duplicate characters and orders the rest by lookup code,
// which is the order glyphs must be added in.
func SortAlphabet(alphabet string) ([]rune, error) {
	type item struct {
		ch   rune
		code int
	}
	var (
		items []item
		seen  = make(map[rune]struct{})
	)
	for _, ch := range alphabet {
		if _, ok := seen[ch]; ok {
			continue
		}
		seen[ch] = struct{}{}

		code, _, err := CharCode(ch)
		if err != nil {
			return nil, err
		}
		items = append(items, item{ch, code})
	}
	slices.SortFunc(items, func(a, b item) int { return a.code - b.code })

	res := make([]rune, len(items))
	for i, it := range items {
		res[i] = it.ch
	}
	return res, nil
}

// Add places the glyph of ch. All glyphs of a font must share the same height;
// double byte characters count for two width units.
func (b *Builder) Add(ch rune, g Glyph) error {
	if _, ok := b.seen[ch]; ok {
		return nil
	}
	code, wide, err := CharCode(ch)
	if err != nil {
		return errors.WithContext(err, "font", b.name)
	}

	width := g.Width
	if wide {
		width = (g.Width + 1) / 2
	}

	if len(b.glyphs) == 0 {
		b.width, b.height = width, g.Height
	} else {
		if width != b.width {
			b.monospace = false
		}
		if g.Height != b.height {
			err := utils.FontConsistencyError(b.name, "glyph %q of font %s is %d pixels high, expected %d", ch, b.name, g.Height, b.height)
			return errors.WithContext(err, "char", string(ch))
		}
	}

	placement, err := b.pool.Place(g.Data, b.name, ch, width)
	if err != nil {
		return errors.WithContext(err, "font", b.name)
	}

	b.seen[ch] = struct{}{}
	b.glyphs = append(b.glyphs, glyphRef{
		ch:        ch,
		code:      code,
		wide:      wide,
		width:     width,
		placement: placement,
	})
	return nil
}

// Len returns the number of glyphs added so far.
func (b *Builder) Len() int {
	return len(b.glyphs)
}

// Table resolves the placements and lays out the lookup tables.
// It must be called once no more glyphs will be placed in the pool.
func (b *Builder) Table() (*Table, error) {
	t := &Table{
		Font:        b.name,
		Monospace:   b.monospace,
		Height:      b.height,
		Compression: b.compression,
	}
	if b.monospace {
		t.Width = b.width
	}

	glyphs := slices.Clone(b.glyphs)
	slices.SortFunc(glyphs, func(x, y glyphRef) int { return x.code - y.code })

	var (
		alphabet []rune
		ascii    []Entry
		codes    []int
	)
	for _, g := range glyphs {
		pool, offset := g.placement.Resolve()
		if t.Pool == "" {
			t.Pool = pool
		} else if t.Pool != pool {
			return nil, utils.FontConsistencyError(b.name, "font %s spans pools %s and %s", b.name, t.Pool, pool)
		}
		if offset >= Undefined {
			b.pool.logger.Warn("glyph offset collides with the undefined marker",
				"font", b.name,
				"char", string(g.ch),
				"offset", offset,
			)
		}

		e := Entry{Code: g.code, Char: g.ch, Offset: offset, Width: g.width}
		if g.wide {
			t.GBK = append(t.GBK, e)
		} else {
			ascii = append(ascii, e)
			codes = append(codes, g.code)
		}
		alphabet = append(alphabet, g.ch)
	}
	t.Alphabet = string(alphabet)

	t.Strategy = SelectStrategy(codes)
	if t.Strategy == Binary || len(ascii) == 0 {
		t.ASCII = ascii
		return t, nil
	}

	lo, hi := ascii[0].Code, ascii[len(ascii)-1].Code
	t.ASCIIOffset = lo
	t.ASCII = make([]Entry, hi-lo+1)
	for i := range t.ASCII {
		t.ASCII[i] = Entry{Code: lo + i, Offset: Undefined}
	}
	for _, e := range ascii {
		t.ASCII[e.Code-lo] = e
	}
	return t, nil
}
