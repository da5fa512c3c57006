package cache

import (
	"context"
	"encoding/hex"

	"github.com/esimov/cgui/utils"
	"github.com/zeebo/blake3"
)

// ComputeFunc produces the value stored for a piece of content.
// It receives the content and its hex encoded digest.
type ComputeFunc[V any] func(content []byte, digest string) (V, error)

// ComputeContextFunc is the context aware variant of ComputeFunc, used when
// producing the value has to wait on an external collaborator.
type ComputeContextFunc[V any] func(ctx context.Context, content []byte, digest string) (V, error)

// Cache maps content digests to computed values.
// It is not safe for concurrent use, callers must serialize access.
type Cache[V any] struct {
	entries map[string]V
}

// New returns an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[string]V)}
}

// Digest returns the hex encoded BLAKE3-256 digest of content.
func Digest(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ComputeIfAbsent returns the value stored under the digest of content.
// When there is none, compute is invoked exactly once, and its result is stored and returned.
// A failed computation stores nothing.
func (c *Cache[V]) ComputeIfAbsent(content []byte, compute ComputeFunc[V]) (V, error) {
	var zero V
	if content == nil {
		return zero, utils.InputShapeError("cache input must be a byte sequence, got nil")
	}
	digest := Digest(content)
	if v, ok := c.entries[digest]; ok {
		return v, nil
	}
	v, err := compute(content, digest)
	if err != nil {
		return zero, err
	}
	c.entries[digest] = v
	return v, nil
}

// ComputeIfAbsentContext is like ComputeIfAbsent, but the computation may block.
// A cancelled context is reported before compute runs; a hit is returned regardless.
func (c *Cache[V]) ComputeIfAbsentContext(ctx context.Context, content []byte, compute ComputeContextFunc[V]) (V, error) {
	var zero V
	if content == nil {
		return zero, utils.InputShapeError("cache input must be a byte sequence, got nil")
	}
	digest := Digest(content)
	if v, ok := c.entries[digest]; ok {
		return v, nil
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	v, err := compute(ctx, content, digest)
	if err != nil {
		return zero, err
	}
	c.entries[digest] = v
	return v, nil
}

// Get returns the value stored for content, if any.
func (c *Cache[V]) Get(content []byte) (V, bool) {
	v, ok := c.entries[Digest(content)]
	return v, ok
}

// Lookup returns the value stored under an already computed digest.
func (c *Cache[V]) Lookup(digest string) (V, bool) {
	v, ok := c.entries[digest]
	return v, ok
}

// Store puts v under digest unless an entry already exists.
// It reports whether the value was stored.
func (c *Cache[V]) Store(digest string, v V) bool {
	if _, ok := c.entries[digest]; ok {
		return false
	}
	c.entries[digest] = v
	return true
}

// Range calls fn for every entry until fn returns false. The order is unspecified.
func (c *Cache[V]) Range(fn func(digest string, v V) bool) {
	for k, v := range c.entries {
		if !fn(k, v) {
			return
		}
	}
}

// Len returns the number of stored entries.
func (c *Cache[V]) Len() int {
	return len(c.entries)
}

// Clear discards all entries.
func (c *Cache[V]) Clear() {
	clear(c.entries)
}
