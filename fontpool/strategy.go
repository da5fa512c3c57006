package fontpool

import "slices"

// Strategy is the lookup layout of a character table.
type Strategy int

const (
	// Linear tables have one slot per code between the lowest and highest code.
	Linear Strategy = iota
	// Binary tables hold sorted (code, offset) entries searched by bisection.
	Binary
)

func (s Strategy) String() string {
	if s == Binary {
		return "BINARY"
	}
	return "LINEAR"
}

// linearRange is the code range below which a direct table is always preferred.
const linearRange = 16

// SelectStrategy picks the layout for a set of character codes. A direct
// table costs 4 bytes per gap in the code range, a sorted table 2 extra
// bytes per present code; small ranges always use the direct table.
func SelectStrategy(codes []int) Strategy {
	if len(codes) == 0 {
		return Linear
	}
	lo, hi := slices.Min(codes), slices.Max(codes)
	span := hi - lo + 1
	gaps := span - len(codes)

	if span < linearRange || gaps*4 <= len(codes)*2 {
		return Linear
	}
	return Binary
}
