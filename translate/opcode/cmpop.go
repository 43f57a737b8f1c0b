package opcode

import "github.com/wasm2lua/wasm2lua/wasm"

// CmpOpType tags every Wasm comparison operator: six comparisons per
// integer width (signed and unsigned) and per float width.
type CmpOpType byte

const (
	CmpEqI32 CmpOpType = iota
	CmpNeI32
	CmpLtI32S
	CmpLtI32U
	CmpGtI32S
	CmpGtI32U
	CmpLeI32S
	CmpLeI32U
	CmpGeI32S
	CmpGeI32U

	CmpEqI64
	CmpNeI64
	CmpLtI64S
	CmpLtI64U
	CmpGtI64S
	CmpGtI64U
	CmpLeI64S
	CmpLeI64U
	CmpGeI64S
	CmpGeI64U

	CmpEqF32
	CmpNeF32
	CmpLtF32
	CmpGtF32
	CmpLeF32
	CmpGeF32

	CmpEqF64
	CmpNeF64
	CmpLtF64
	CmpGtF64
	CmpLeF64
	CmpGeF64
)

var cmpOpTags = map[CmpOpType]Tag{
	CmpEqI32: {"eq", "i32"}, CmpNeI32: {"ne", "i32"},
	CmpLtI32S: {"lt", "i32"}, CmpLtI32U: {"lt", "u32"},
	CmpGtI32S: {"gt", "i32"}, CmpGtI32U: {"gt", "u32"},
	CmpLeI32S: {"le", "i32"}, CmpLeI32U: {"le", "u32"},
	CmpGeI32S: {"ge", "i32"}, CmpGeI32U: {"ge", "u32"},

	CmpEqI64: {"eq", "i64"}, CmpNeI64: {"ne", "i64"},
	CmpLtI64S: {"lt", "i64"}, CmpLtI64U: {"lt", "u64"},
	CmpGtI64S: {"gt", "i64"}, CmpGtI64U: {"gt", "u64"},
	CmpLeI64S: {"le", "i64"}, CmpLeI64U: {"le", "u64"},
	CmpGeI64S: {"ge", "i64"}, CmpGeI64U: {"ge", "u64"},

	CmpEqF32: {"eq", "f32"}, CmpNeF32: {"ne", "f32"},
	CmpLtF32: {"lt", "f32"}, CmpGtF32: {"gt", "f32"},
	CmpLeF32: {"le", "f32"}, CmpGeF32: {"ge", "f32"},

	CmpEqF64: {"eq", "f64"}, CmpNeF64: {"ne", "f64"},
	CmpLtF64: {"lt", "f64"}, CmpGtF64: {"gt", "f64"},
	CmpLeF64: {"le", "f64"}, CmpGeF64: {"ge", "f64"},
}

var cmpInlineSymbol = map[CmpOpType]string{
	CmpEqI32: "==", CmpNeI32: "~=", CmpLtI32S: "<", CmpGtI32S: ">", CmpLeI32S: "<=", CmpGeI32S: ">=",
	CmpEqI64: "==", CmpNeI64: "~=", CmpLtI64S: "<", CmpGtI64S: ">", CmpLeI64S: "<=", CmpGeI64S: ">=",
	CmpEqF32: "==", CmpNeF32: "~=", CmpLtF32: "<", CmpGtF32: ">", CmpLeF32: "<=", CmpGeF32: ">=",
	CmpEqF64: "==", CmpNeF64: "~=", CmpLtF64: "<", CmpGtF64: ">", CmpLeF64: "<=", CmpGeF64: ">=",
}

// Tag returns the (head, tail) name pair for the comparison op.
func (c CmpOpType) Tag() Tag { return cmpOpTags[c] }

// InlineSymbol returns the Lua comparison operator for comparisons whose
// Lua semantics match Wasm bit-for-bit: signed integer comparisons (Lua
// numbers compare as signed) and IEEE-754 float comparisons (Lua compares
// floats the same way, including NaN never comparing equal). Unsigned
// integer comparisons never match Lua's native operators and always
// require a runtime helper.
func (c CmpOpType) InlineSymbol() (string, bool) {
	sym, ok := cmpInlineSymbol[c]
	return sym, ok
}

var opToCmpOp = map[byte]CmpOpType{
	wasm.OpI32Eq: CmpEqI32, wasm.OpI32Ne: CmpNeI32,
	wasm.OpI32LtS: CmpLtI32S, wasm.OpI32LtU: CmpLtI32U,
	wasm.OpI32GtS: CmpGtI32S, wasm.OpI32GtU: CmpGtI32U,
	wasm.OpI32LeS: CmpLeI32S, wasm.OpI32LeU: CmpLeI32U,
	wasm.OpI32GeS: CmpGeI32S, wasm.OpI32GeU: CmpGeI32U,

	wasm.OpI64Eq: CmpEqI64, wasm.OpI64Ne: CmpNeI64,
	wasm.OpI64LtS: CmpLtI64S, wasm.OpI64LtU: CmpLtI64U,
	wasm.OpI64GtS: CmpGtI64S, wasm.OpI64GtU: CmpGtI64U,
	wasm.OpI64LeS: CmpLeI64S, wasm.OpI64LeU: CmpLeI64U,
	wasm.OpI64GeS: CmpGeI64S, wasm.OpI64GeU: CmpGeI64U,

	wasm.OpF32Eq: CmpEqF32, wasm.OpF32Ne: CmpNeF32,
	wasm.OpF32Lt: CmpLtF32, wasm.OpF32Gt: CmpGtF32,
	wasm.OpF32Le: CmpLeF32, wasm.OpF32Ge: CmpGeF32,

	wasm.OpF64Eq: CmpEqF64, wasm.OpF64Ne: CmpNeF64,
	wasm.OpF64Lt: CmpLtF64, wasm.OpF64Gt: CmpGtF64,
	wasm.OpF64Le: CmpLeF64, wasm.OpF64Ge: CmpGeF64,
}

// TryAsCmpOp classifies a decoded instruction as a comparison operator.
// i32.eqz / i64.eqz are not included here: the Factory lowers them to a
// CmpOp against a zero constant (spec.md §4.4), not to a distinct tag.
func TryAsCmpOp(instr wasm.Instruction) (CmpOpType, bool) {
	c, ok := opToCmpOp[instr.Opcode]
	return c, ok
}
