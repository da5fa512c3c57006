package fontpool

import (
	"log/slog"

	"github.com/esimov/cgui/cache"
	"github.com/esimov/cgui/utils"
)

// MaxPoolSize is the largest pool addressable with 16 bit offsets.
const MaxPoolSize = 65536

// PoolName returns the symbol of the pool owned by a font.
func PoolName(font string) string {
	return "CG_FontData_" + font
}

// Placement locates a glyph inside a pool. The location may change while
// fonts are merged; call Resolve after all glyphs have been placed.
type Placement struct {
	pool   *pool
	offset int

	// Width is the width of the glyph the placement was issued for.
	Width int
}

// Resolve returns the pool symbol and byte offset of the glyph,
// taking every merge of its pool into account.
func (p *Placement) Resolve() (string, int) {
	pl, off := p.pool, p.offset
	for pl.parent != nil {
		off += pl.shift
		pl = pl.parent
	}
	return pl.name, off
}

// Buffer is the final content of a canonical pool.
type Buffer struct {
	Name string
	Font string
	Data []byte
}

// Warning records a pool that grew past the 16 bit offset range.
type Warning struct {
	Pool  string
	Size  int
	Limit int
}

type pool struct {
	font    string
	name    string
	entries *cache.Cache[*Placement]
	buffers [][]byte
	size    int
	warned  bool

	// set once the pool is merged into parent, shift is the size parent had at that moment.
	parent *pool
	shift  int
}

// Pool holds the glyph pools of one generation.
type Pool struct {
	aliases  map[string]string
	hashes   map[string]string
	pools    map[string]*pool
	order    []*pool
	warnings []Warning
	limit    int
	logger   *slog.Logger
}

// Option customizes a Pool.
type Option func(*Pool)

// WithLogger sets the logger used for merge and capacity messages.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithLimit overrides the pool size above which a warning is raised.
func WithLimit(n int) Option {
	return func(p *Pool) {
		p.limit = n
	}
}

// New creates an empty set of pools.
func New(opts ...Option) *Pool {
	p := &Pool{
		aliases: make(map[string]string),
		hashes:  make(map[string]string),
		pools:   make(map[string]*pool),
		limit:   MaxPoolSize,
		logger:  utils.Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Canonical resolves a font name through the alias chain.
func (p *Pool) Canonical(font string) string {
	visited := make(map[string]struct{})
	for {
		next, ok := p.aliases[font]
		if !ok {
			return font
		}
		if _, seen := visited[font]; seen {
			return font
		}
		visited[font] = struct{}{}
		font = next
	}
}

// Place stores an encoded glyph for a font and returns its placement.
// Identical content placed twice under the same font yields the same placement.
func (p *Pool) Place(data []byte, font string, ch rune, width int) (*Placement, error) {
	font = p.Canonical(font)

	pl, ok := p.pools[font]
	if !ok {
		pl = &pool{
			font:    font,
			name:    PoolName(font),
			entries: cache.New[*Placement](),
		}
		p.pools[font] = pl
		p.order = append(p.order, pl)
	}

	return pl.entries.ComputeIfAbsent(data, func(content []byte, digest string) (*Placement, error) {
		// The space glyph is blank in every typeface and says nothing about the font identity.
		if ch != ' ' {
			if owner, ok := p.hashes[digest]; ok {
				if owner = p.Canonical(owner); owner != font {
					if res := p.merge(pl, p.pools[owner], digest); res != nil {
						return res, nil
					}
				}
			} else {
				p.hashes[digest] = font
			}
		}
		return p.append(pl, content, width), nil
	})
}

func (p *Pool) append(pl *pool, content []byte, width int) *Placement {
	res := &Placement{pool: pl, offset: pl.size, Width: width}
	pl.buffers = append(pl.buffers, content)
	pl.size += len(content)
	p.checkLimit(pl)
	return res
}

// merge retires src into dst and returns the placement dst holds for digest.
func (p *Pool) merge(src, dst *pool, digest string) *Placement {
	p.aliases[src.font] = dst.font
	delete(p.pools, src.font)

	src.parent, src.shift = dst, dst.size
	src.entries.Range(func(d string, v *Placement) bool {
		dst.entries.Store(d, v)
		return true
	})
	dst.buffers = append(dst.buffers, src.buffers...)
	dst.size += src.size

	p.logger.Debug("merged font pool",
		"font", src.font,
		"into", dst.font,
		"shift", src.shift,
	)
	p.checkLimit(dst)

	res, _ := dst.entries.Lookup(digest)
	return res
}

func (p *Pool) checkLimit(pl *pool) {
	if pl.warned || pl.size <= p.limit {
		return
	}
	pl.warned = true
	p.warnings = append(p.warnings, Warning{Pool: pl.name, Size: pl.size, Limit: p.limit})
	p.logger.Warn("font pool exceeds the 16 bit offset range",
		"pool", pl.name,
		"size", pl.size,
		"limit", p.limit,
	)
}

// Size returns the byte size of the pool a font resolves to.
func (p *Pool) Size(font string) int {
	if pl, ok := p.pools[p.Canonical(font)]; ok {
		return pl.size
	}
	return 0
}

// Pools returns the canonical pools in creation order.
func (p *Pool) Pools() []Buffer {
	res := make([]Buffer, 0, len(p.pools))
	for _, pl := range p.order {
		if pl.parent != nil {
			continue
		}
		data := make([]byte, 0, pl.size)
		for _, b := range pl.buffers {
			data = append(data, b...)
		}
		res = append(res, Buffer{Name: pl.name, Font: pl.font, Data: data})
	}
	return res
}

// Warnings returns the capacity warnings raised so far.
func (p *Pool) Warnings() []Warning {
	return p.warnings
}
