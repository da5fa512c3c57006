// Package cache implements a content-addressed memoization store.
//
// A Cache keys every value by the BLAKE3 digest of the content that produced
// it, so identical assets are computed once per generation no matter how many
// screens or fonts request them. Entries are never evicted: a cache lives for
// one code generation run and is then discarded.
package cache
