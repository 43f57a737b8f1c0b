package analyze

import "github.com/wasm2lua/wasm2lua/translate/opcode"

// taggedInline is satisfied by opcode.BinOpType and opcode.CmpOpType: both
// carry a head/tail name via Tag and already know, dialect-independently,
// whether they have any native Lua spelling at all.
type taggedInline interface {
	Tag() opcode.Tag
	InlineSymbol() (string, bool)
}

// InlineSymbol returns the native Lua operator for op in dialect d, and
// ok=false when op must go through a runtime helper instead. This mirrors
// the original's as_symbol.rs analyzer existing once per dialect: the two
// dialects agree on every case opcode.InlineSymbol already decides, except
// 64-bit integer arithmetic and comparison, which Luau has no native
// operator for at all (it has no 64-bit integer type) while LuaJIT's ffi
// cdata gives int64 ordinary infix operators.
func InlineSymbol(op taggedInline, d Dialect) (string, bool) {
	sym, ok := op.InlineSymbol()
	if !ok {
		return "", false
	}
	if d == DialectLuau && op.Tag().Tail == "i64" {
		return "", false
	}
	return sym, true
}
