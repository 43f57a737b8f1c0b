package luau

import "fmt"

// FormatI64 renders a 64-bit literal the LU way: Luau has no native 64-bit
// integer type, so every value is built through the runtime's helper
// constructors (spec.md §4.5: "i64_ZERO/i64_ONE/i64_from_u32(lo, hi)").
func FormatI64(v int64) string {
	switch v {
	case 0:
		return "i64_ZERO"
	case 1:
		return "i64_ONE"
	default:
		u := uint64(v)
		return fmt.Sprintf("i64_from_u32(0x%x, 0x%x)", uint32(u), uint32(u>>32))
	}
}
