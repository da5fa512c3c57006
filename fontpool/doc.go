/*
Package fontpool accumulates encoded glyph bitmaps into per-font byte pools.

Glyphs are deduplicated by content inside a pool. When a font produces a glyph
(other than the space character) that another font already stored, the two
fonts are assumed to be the same typeface: the newer pool is appended to the
older one and the newer font name becomes an alias of the older.

Offsets issued before such a merge are not patched in place. Place returns a
*Placement handle, and the final pool name and offset are obtained with
Placement.Resolve once every glyph of the generation has been placed.

Builders turn the placements of one logical font into lookup tables, picking a
direct indexed (LINEAR) or sorted (BINARY) layout, and a Registry collapses
fonts whose tables are subsets of one another.
*/
package fontpool
