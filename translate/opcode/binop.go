package opcode

import "github.com/wasm2lua/wasm2lua/wasm"

// BinOpType tags every Wasm binary arithmetic/bitwise operator.
type BinOpType byte

const (
	BinAddI32 BinOpType = iota
	BinSubI32
	BinMulI32
	BinDivI32S
	BinDivI32U
	BinRemI32S
	BinRemI32U
	BinAndI32
	BinOrI32
	BinXorI32
	BinShlI32
	BinShrI32S
	BinShrI32U
	BinRotlI32
	BinRotrI32

	BinAddI64
	BinSubI64
	BinMulI64
	BinDivI64S
	BinDivI64U
	BinRemI64S
	BinRemI64U
	BinAndI64
	BinOrI64
	BinXorI64
	BinShlI64
	BinShrI64S
	BinShrI64U
	BinRotlI64
	BinRotrI64

	BinAddF32
	BinSubF32
	BinMulF32
	BinDivF32
	BinMinF32
	BinMaxF32
	BinCopysignF32

	BinAddF64
	BinSubF64
	BinMulF64
	BinDivF64
	BinMinF64
	BinMaxF64
	BinCopysignF64
)

var binOpTags = map[BinOpType]Tag{
	BinAddI32:  {"add", "i32"},
	BinSubI32:  {"sub", "i32"},
	BinMulI32:  {"mul", "i32"},
	BinDivI32S: {"div", "i32"},
	BinDivI32U: {"div", "u32"},
	BinRemI32S: {"rem", "i32"},
	BinRemI32U: {"rem", "u32"},
	BinAndI32:  {"band", "i32"},
	BinOrI32:   {"bor", "i32"},
	BinXorI32:  {"bxor", "i32"},
	BinShlI32:  {"shl", "i32"},
	BinShrI32S: {"shr", "i32"},
	BinShrI32U: {"shr", "u32"},
	BinRotlI32: {"rotl", "i32"},
	BinRotrI32: {"rotr", "i32"},

	BinAddI64:  {"add", "i64"},
	BinSubI64:  {"sub", "i64"},
	BinMulI64:  {"mul", "i64"},
	BinDivI64S: {"div", "i64"},
	BinDivI64U: {"div", "u64"},
	BinRemI64S: {"rem", "i64"},
	BinRemI64U: {"rem", "u64"},
	BinAndI64:  {"band", "i64"},
	BinOrI64:   {"bor", "i64"},
	BinXorI64:  {"bxor", "i64"},
	BinShlI64:  {"shl", "i64"},
	BinShrI64S: {"shr", "i64"},
	BinShrI64U: {"shr", "u64"},
	BinRotlI64: {"rotl", "i64"},
	BinRotrI64: {"rotr", "i64"},

	BinAddF32:      {"add", "f32"},
	BinSubF32:      {"sub", "f32"},
	BinMulF32:      {"mul", "f32"},
	BinDivF32:      {"div", "f32"},
	BinMinF32:      {"min", "f32"},
	BinMaxF32:      {"max", "f32"},
	BinCopysignF32: {"copysign", "f32"},

	BinAddF64:      {"add", "f64"},
	BinSubF64:      {"sub", "f64"},
	BinMulF64:      {"mul", "f64"},
	BinDivF64:      {"div", "f64"},
	BinMinF64:      {"min", "f64"},
	BinMaxF64:      {"max", "f64"},
	BinCopysignF64: {"copysign", "f64"},
}

// binInlineSymbol is the native Lua operator symbol for the plain
// arithmetic ops. Whether a given dialect may use it (Luau has no native
// 64-bit integer operators) is decided by translate/analyze.InlineSymbol,
// not here.
var binInlineSymbol = map[BinOpType]string{
	BinAddI32: "+", BinSubI32: "-", BinMulI32: "*",
	BinAddI64: "+", BinSubI64: "-", BinMulI64: "*",
	BinAddF32: "+", BinSubF32: "-", BinMulF32: "*", BinDivF32: "/",
	BinAddF64: "+", BinSubF64: "-", BinMulF64: "*", BinDivF64: "/",
}

// Tag returns the (head, tail) name pair for the binary op.
func (b BinOpType) Tag() Tag { return binOpTags[b] }

// InlineSymbol returns the Lua infix operator for ops whose meaning is
// dialect-independent (plain arithmetic on i32/i64/f32/f64), and ok=false
// for ops that always require a runtime helper call (div/rem/bitwise/
// shift/rotate/min/max/copysign), which a dialect may still special-case.
func (b BinOpType) InlineSymbol() (string, bool) {
	switch b {
	case BinAddI32, BinSubI32, BinMulI32, BinAddI64, BinSubI64, BinMulI64,
		BinAddF32, BinSubF32, BinMulF32, BinDivF32,
		BinAddF64, BinSubF64, BinMulF64, BinDivF64:
		sym, ok := binInlineSymbol[b]
		return sym, ok
	default:
		return "", false
	}
}

// ResultType returns the Wasm value type this binary op produces.
func (b BinOpType) ResultType() wasm.ValType {
	switch {
	case b >= BinAddI64 && b <= BinRotrI64:
		return wasm.ValI64
	case b >= BinAddF32 && b <= BinCopysignF32:
		return wasm.ValF32
	case b >= BinAddF64 && b <= BinCopysignF64:
		return wasm.ValF64
	default:
		return wasm.ValI32
	}
}

var opToBinOp = map[byte]BinOpType{
	wasm.OpI32Add: BinAddI32, wasm.OpI32Sub: BinSubI32, wasm.OpI32Mul: BinMulI32,
	wasm.OpI32DivS: BinDivI32S, wasm.OpI32DivU: BinDivI32U,
	wasm.OpI32RemS: BinRemI32S, wasm.OpI32RemU: BinRemI32U,
	wasm.OpI32And: BinAndI32, wasm.OpI32Or: BinOrI32, wasm.OpI32Xor: BinXorI32,
	wasm.OpI32Shl: BinShlI32, wasm.OpI32ShrS: BinShrI32S, wasm.OpI32ShrU: BinShrI32U,
	wasm.OpI32Rotl: BinRotlI32, wasm.OpI32Rotr: BinRotrI32,

	wasm.OpI64Add: BinAddI64, wasm.OpI64Sub: BinSubI64, wasm.OpI64Mul: BinMulI64,
	wasm.OpI64DivS: BinDivI64S, wasm.OpI64DivU: BinDivI64U,
	wasm.OpI64RemS: BinRemI64S, wasm.OpI64RemU: BinRemI64U,
	wasm.OpI64And: BinAndI64, wasm.OpI64Or: BinOrI64, wasm.OpI64Xor: BinXorI64,
	wasm.OpI64Shl: BinShlI64, wasm.OpI64ShrS: BinShrI64S, wasm.OpI64ShrU: BinShrI64U,
	wasm.OpI64Rotl: BinRotlI64, wasm.OpI64Rotr: BinRotrI64,

	wasm.OpF32Add: BinAddF32, wasm.OpF32Sub: BinSubF32, wasm.OpF32Mul: BinMulF32,
	wasm.OpF32Div: BinDivF32, wasm.OpF32Min: BinMinF32, wasm.OpF32Max: BinMaxF32,
	wasm.OpF32Copysign: BinCopysignF32,

	wasm.OpF64Add: BinAddF64, wasm.OpF64Sub: BinSubF64, wasm.OpF64Mul: BinMulF64,
	wasm.OpF64Div: BinDivF64, wasm.OpF64Min: BinMinF64, wasm.OpF64Max: BinMaxF64,
	wasm.OpF64Copysign: BinCopysignF64,
}

// TryAsBinOp classifies a decoded instruction as a binary operator.
func TryAsBinOp(instr wasm.Instruction) (BinOpType, bool) {
	b, ok := opToBinOp[instr.Opcode]
	return b, ok
}
