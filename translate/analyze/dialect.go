package analyze

// Dialect distinguishes the two Lua targets spec.md §4.5 names (LJ and LU).
// The opcode package's Tag/InlineSymbol data alone cannot answer "does this
// stay inline" for every operator - whether 64-bit integer arithmetic has a
// native Lua spelling depends on which dialect is emitting, since LuaJIT's
// ffi cdata gives int64 the ordinary arithmetic operators and Luau has no
// 64-bit integer type at all.
type Dialect int

const (
	DialectLuaJIT Dialect = iota
	DialectLuau
)

// String names the dialect the way both backends' package names do.
func (d Dialect) String() string {
	switch d {
	case DialectLuaJIT:
		return "luajit"
	case DialectLuau:
		return "luau"
	default:
		return "unknown"
	}
}
