package fontpool

import (
	"fmt"
	"log/slog"

	"github.com/esimov/cgui/utils"
)

// Font is a registered font table and, when collapsed, the font it aliases.
type Font struct {
	ID      string
	AliasOf string
	Table   *Table
}

type entryKey struct {
	code, offset, width int
}

// Registry collapses fonts whose glyph tables are contained in one another.
type Registry struct {
	fonts   []*Font
	byKey   map[string][]*Font
	aliases map[string]string
	logger  *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byKey:   make(map[string][]*Font),
		aliases: make(map[string]string),
		logger:  utils.Logger(),
	}
}

func metricKey(t *Table) string {
	return fmt.Sprintf("%d|%d|%t|%s", t.Width, t.Height, t.Monospace, t.Pool)
}

func entrySet(t *Table) map[entryKey]struct{} {
	set := make(map[entryKey]struct{}, len(t.ASCII)+len(t.GBK))
	for _, list := range [][]Entry{t.ASCII, t.GBK} {
		for _, e := range list {
			if e.Offset == Undefined {
				continue
			}
			set[entryKey{e.Code, e.Offset, e.Width}] = struct{}{}
		}
	}
	return set
}

func covers(outer, inner map[entryKey]struct{}) bool {
	for k := range inner {
		if _, ok := outer[k]; !ok {
			return false
		}
	}
	return true
}

// Add registers a font table. Fonts must be added in generation order.
//
// A font whose characters are all present, with the same offsets and widths,
// in an earlier font of identical metrics becomes an alias of that font.
// Otherwise, earlier fonts covered by the new one become its aliases. In both
// directions a LINEAR table is never replaced by a BINARY one.
func (r *Registry) Add(id string, t *Table) *Font {
	f := &Font{ID: id, Table: t}
	r.fonts = append(r.fonts, f)

	key := metricKey(t)
	set := entrySet(t)

	for _, prev := range r.byKey[key] {
		if prev.AliasOf != "" {
			continue
		}
		if t.Strategy == Linear && prev.Table.Strategy == Binary {
			continue
		}
		if covers(entrySet(prev.Table), set) {
			f.AliasOf = prev.ID
			r.aliases[id] = prev.ID
			r.logger.Debug("font collapsed", "font", id, "into", prev.ID)
			return f
		}
	}

	for _, prev := range r.byKey[key] {
		if prev.AliasOf != "" {
			continue
		}
		if prev.Table.Strategy == Linear && t.Strategy == Binary {
			continue
		}
		if covers(set, entrySet(prev.Table)) {
			prev.AliasOf = id
			r.aliases[prev.ID] = id
			r.logger.Debug("font collapsed", "font", prev.ID, "into", id)
		}
	}
	r.byKey[key] = append(r.byKey[key], f)
	return f
}

// Resolve follows the alias chain of a font id.
func (r *Registry) Resolve(id string) string {
	visited := make(map[string]struct{})
	for {
		next, ok := r.aliases[id]
		if !ok {
			return id
		}
		if _, seen := visited[id]; seen {
			return id
		}
		visited[id] = struct{}{}
		id = next
	}
}

// Fonts returns the registered fonts in registration order.
func (r *Registry) Fonts() []*Font {
	return r.fonts
}
