package backend

import (
	"math"
	"strconv"
)

// FormatFloat renders a float32/float64 value the way spec.md §4.5 requires
// in both dialects: scientific notation, signed math.huge for infinities,
// and a sign-prefixed (0.0/0.0) for NaNs (Lua has no NaN literal, and
// `0/0` alone loses the sign bit a bitcast round-trip needs to preserve).
func FormatFloat(f float64, bitSize int) string {
	switch {
	case math.IsInf(f, 1):
		return "math.huge"
	case math.IsInf(f, -1):
		return "-math.huge"
	case math.IsNaN(f):
		if math.Signbit(f) {
			return "-(0.0/0.0)"
		}
		return "(0.0/0.0)"
	default:
		return strconv.FormatFloat(f, 'e', -1, bitSize)
	}
}
