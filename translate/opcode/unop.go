package opcode

import "github.com/wasm2lua/wasm2lua/wasm"

// UnOpType tags every Wasm unary operator: integer bit-counting, float
// rounding, sign-extension, and every conversion/reinterpret/truncate
// (including saturating) pair across i32/u32/i64/u64/f32/f64.
type UnOpType byte

const (
	// Integer bit-counting.
	UnClzI32 UnOpType = iota
	UnCtzI32
	UnPopcntI32
	UnClzI64
	UnCtzI64
	UnPopcntI64

	// Float rounding / unary arithmetic.
	UnAbsF32
	UnNegF32
	UnCeilF32
	UnFloorF32
	UnNearestF32
	UnSqrtF32
	UnTruncF32
	UnAbsF64
	UnNegF64
	UnCeilF64
	UnFloorF64
	UnNearestF64
	UnSqrtF64
	UnTruncF64

	// Sign extension.
	UnExtendI32I8
	UnExtendI32I16
	UnExtendI64I8
	UnExtendI64I16
	UnExtendI64I32

	// Conversions / reinterprets / truncations (cast family).
	UnWrapI64I32
	UnTruncF32ToI32S
	UnTruncF32ToI32U
	UnTruncF64ToI32S
	UnTruncF64ToI32U
	UnExtendI32ToI64S
	UnExtendI32ToI64U
	UnTruncF32ToI64S
	UnTruncF32ToI64U
	UnTruncF64ToI64S
	UnTruncF64ToI64U
	UnConvertI32ToF32S
	UnConvertI32ToF32U
	UnConvertI64ToF32S
	UnConvertI64ToF32U
	UnDemoteF64ToF32
	UnConvertI32ToF64S
	UnConvertI32ToF64U
	UnConvertI64ToF64S
	UnConvertI64ToF64U
	UnPromoteF32ToF64
	UnReinterpretF32ToI32
	UnReinterpretF64ToI64
	UnReinterpretI32ToF32
	UnReinterpretI64ToF64

	// Saturating truncations (bulk-memory/misc-prefix proposal).
	UnTruncSatF32ToI32S
	UnTruncSatF32ToI32U
	UnTruncSatF64ToI32S
	UnTruncSatF64ToI32U
	UnTruncSatF32ToI64S
	UnTruncSatF32ToI64U
	UnTruncSatF64ToI64S
	UnTruncSatF64ToI64U
)

var unOpTags = map[UnOpType]Tag{
	UnClzI32:    {"clz", "i32"},
	UnCtzI32:    {"ctz", "i32"},
	UnPopcntI32: {"popcnt", "i32"},
	UnClzI64:    {"clz", "i64"},
	UnCtzI64:    {"ctz", "i64"},
	UnPopcntI64: {"popcnt", "i64"},

	UnAbsF32:     {"abs", "f32"},
	UnNegF32:     {"neg", "f32"},
	UnCeilF32:    {"ceil", "f32"},
	UnFloorF32:   {"floor", "f32"},
	UnNearestF32: {"nearest", "f32"},
	UnSqrtF32:    {"sqrt", "f32"},
	UnTruncF32:   {"trunc", "f32"},
	UnAbsF64:     {"abs", "f64"},
	UnNegF64:     {"neg", "f64"},
	UnCeilF64:    {"ceil", "f64"},
	UnFloorF64:   {"floor", "f64"},
	UnNearestF64: {"nearest", "f64"},
	UnSqrtF64:    {"sqrt", "f64"},
	UnTruncF64:   {"trunc", "f64"},

	UnExtendI32I8:  {"extend", "i32_i8"},
	UnExtendI32I16: {"extend", "i32_i16"},
	UnExtendI64I8:  {"extend", "i64_i8"},
	UnExtendI64I16: {"extend", "i64_i16"},
	UnExtendI64I32: {"extend", "i64_i32"},

	UnWrapI64I32:          {"wrap", "i64_i32"},
	UnTruncF32ToI32S:      {"trunc", "f32_i32"},
	UnTruncF32ToI32U:      {"trunc", "f32_u32"},
	UnTruncF64ToI32S:      {"trunc", "f64_i32"},
	UnTruncF64ToI32U:      {"trunc", "f64_u32"},
	UnExtendI32ToI64S:     {"extend", "i32_i64"},
	UnExtendI32ToI64U:     {"extend", "u32_i64"},
	UnTruncF32ToI64S:      {"trunc", "f32_i64"},
	UnTruncF32ToI64U:      {"trunc", "f32_u64"},
	UnTruncF64ToI64S:      {"trunc", "f64_i64"},
	UnTruncF64ToI64U:      {"trunc", "f64_u64"},
	UnConvertI32ToF32S:    {"convert", "i32_f32"},
	UnConvertI32ToF32U:    {"convert", "u32_f32"},
	UnConvertI64ToF32S:    {"convert", "i64_f32"},
	UnConvertI64ToF32U:    {"convert", "u64_f32"},
	UnDemoteF64ToF32:      {"demote", "f64_f32"},
	UnConvertI32ToF64S:    {"convert", "i32_f64"},
	UnConvertI32ToF64U:    {"convert", "u32_f64"},
	UnConvertI64ToF64S:    {"convert", "i64_f64"},
	UnConvertI64ToF64U:    {"convert", "u64_f64"},
	UnPromoteF32ToF64:     {"promote", "f32_f64"},
	UnReinterpretF32ToI32: {"reinterpret", "f32_i32"},
	UnReinterpretF64ToI64: {"reinterpret", "f64_i64"},
	UnReinterpretI32ToF32: {"reinterpret", "i32_f32"},
	UnReinterpretI64ToF64: {"reinterpret", "i64_f64"},

	UnTruncSatF32ToI32S: {"saturate", "f32_i32"},
	UnTruncSatF32ToI32U: {"saturate", "f32_u32"},
	UnTruncSatF64ToI32S: {"saturate", "f64_i32"},
	UnTruncSatF64ToI32U: {"saturate", "f64_u32"},
	UnTruncSatF32ToI64S: {"saturate", "f32_i64"},
	UnTruncSatF32ToI64U: {"saturate", "f32_u64"},
	UnTruncSatF64ToI64S: {"saturate", "f64_i64"},
	UnTruncSatF64ToI64U: {"saturate", "f64_u64"},
}

// Tag returns the (head, tail) name pair for the unary op.
func (u UnOpType) Tag() Tag { return unOpTags[u] }

// IsCast reports whether this unary op is a conversion/reinterpret/
// truncate/saturate op rather than a plain arithmetic unop. Mirrors
// try_as_castop's filter over the UnOpType superset (spec.md §4.1).
func (u UnOpType) IsCast() bool {
	return u >= UnWrapI64I32
}

// ResultType returns the Wasm value type this unary op produces.
func (u UnOpType) ResultType() wasm.ValType {
	switch u {
	case UnClzI64, UnCtzI64, UnPopcntI64, UnExtendI64I8, UnExtendI64I16, UnExtendI64I32,
		UnExtendI32ToI64S, UnExtendI32ToI64U, UnTruncF32ToI64S, UnTruncF32ToI64U,
		UnTruncF64ToI64S, UnTruncF64ToI64U, UnReinterpretF64ToI64,
		UnTruncSatF32ToI64S, UnTruncSatF32ToI64U, UnTruncSatF64ToI64S, UnTruncSatF64ToI64U:
		return wasm.ValI64
	case UnAbsF32, UnNegF32, UnCeilF32, UnFloorF32, UnNearestF32, UnSqrtF32, UnTruncF32,
		UnConvertI32ToF32S, UnConvertI32ToF32U, UnConvertI64ToF32S, UnConvertI64ToF32U,
		UnDemoteF64ToF32, UnReinterpretI32ToF32:
		return wasm.ValF32
	case UnAbsF64, UnNegF64, UnCeilF64, UnFloorF64, UnNearestF64, UnSqrtF64, UnTruncF64,
		UnConvertI32ToF64S, UnConvertI32ToF64U, UnConvertI64ToF64S, UnConvertI64ToF64U,
		UnPromoteF32ToF64, UnReinterpretI64ToF64:
		return wasm.ValF64
	default:
		return wasm.ValI32
	}
}

var opToUnOp = map[byte]UnOpType{
	wasm.OpI32Clz:    UnClzI32,
	wasm.OpI32Ctz:    UnCtzI32,
	wasm.OpI32Popcnt: UnPopcntI32,
	wasm.OpI64Clz:    UnClzI64,
	wasm.OpI64Ctz:    UnCtzI64,
	wasm.OpI64Popcnt: UnPopcntI64,

	wasm.OpF32Abs:     UnAbsF32,
	wasm.OpF32Neg:     UnNegF32,
	wasm.OpF32Ceil:    UnCeilF32,
	wasm.OpF32Floor:   UnFloorF32,
	wasm.OpF32Nearest: UnNearestF32,
	wasm.OpF32Sqrt:    UnSqrtF32,
	wasm.OpF32Trunc:   UnTruncF32,
	wasm.OpF64Abs:     UnAbsF64,
	wasm.OpF64Neg:     UnNegF64,
	wasm.OpF64Ceil:    UnCeilF64,
	wasm.OpF64Floor:   UnFloorF64,
	wasm.OpF64Nearest: UnNearestF64,
	wasm.OpF64Sqrt:    UnSqrtF64,
	wasm.OpF64Trunc:   UnTruncF64,

	wasm.OpI32Extend8S:  UnExtendI32I8,
	wasm.OpI32Extend16S: UnExtendI32I16,
	wasm.OpI64Extend8S:  UnExtendI64I8,
	wasm.OpI64Extend16S: UnExtendI64I16,
	wasm.OpI64Extend32S: UnExtendI64I32,

	wasm.OpI32WrapI64:        UnWrapI64I32,
	wasm.OpI32TruncF32S:      UnTruncF32ToI32S,
	wasm.OpI32TruncF32U:      UnTruncF32ToI32U,
	wasm.OpI32TruncF64S:      UnTruncF64ToI32S,
	wasm.OpI32TruncF64U:      UnTruncF64ToI32U,
	wasm.OpI64ExtendI32S:     UnExtendI32ToI64S,
	wasm.OpI64ExtendI32U:     UnExtendI32ToI64U,
	wasm.OpI64TruncF32S:      UnTruncF32ToI64S,
	wasm.OpI64TruncF32U:      UnTruncF32ToI64U,
	wasm.OpI64TruncF64S:      UnTruncF64ToI64S,
	wasm.OpI64TruncF64U:      UnTruncF64ToI64U,
	wasm.OpF32ConvertI32S:    UnConvertI32ToF32S,
	wasm.OpF32ConvertI32U:    UnConvertI32ToF32U,
	wasm.OpF32ConvertI64S:    UnConvertI64ToF32S,
	wasm.OpF32ConvertI64U:    UnConvertI64ToF32U,
	wasm.OpF32DemoteF64:      UnDemoteF64ToF32,
	wasm.OpF64ConvertI32S:    UnConvertI32ToF64S,
	wasm.OpF64ConvertI32U:    UnConvertI32ToF64U,
	wasm.OpF64ConvertI64S:    UnConvertI64ToF64S,
	wasm.OpF64ConvertI64U:    UnConvertI64ToF64U,
	wasm.OpF64PromoteF32:     UnPromoteF32ToF64,
	wasm.OpI32ReinterpretF32: UnReinterpretF32ToI32,
	wasm.OpI64ReinterpretF64: UnReinterpretF64ToI64,
	wasm.OpF32ReinterpretI32: UnReinterpretI32ToF32,
	wasm.OpF64ReinterpretI64: UnReinterpretI64ToF64,
}

var miscSubopToUnOp = map[uint32]UnOpType{
	wasm.MiscI32TruncSatF32S: UnTruncSatF32ToI32S,
	wasm.MiscI32TruncSatF32U: UnTruncSatF32ToI32U,
	wasm.MiscI32TruncSatF64S: UnTruncSatF64ToI32S,
	wasm.MiscI32TruncSatF64U: UnTruncSatF64ToI32U,
	wasm.MiscI64TruncSatF32S: UnTruncSatF32ToI64S,
	wasm.MiscI64TruncSatF32U: UnTruncSatF32ToI64U,
	wasm.MiscI64TruncSatF64S: UnTruncSatF64ToI64S,
	wasm.MiscI64TruncSatF64U: UnTruncSatF64ToI64U,
}

// TryAsUnOp classifies a decoded instruction as a unary operator, including
// the saturating truncations (which TryAsCastOp also recognizes), and
// returns false for anything else, such as binary/compare ops.
func TryAsUnOp(instr wasm.Instruction) (UnOpType, bool) {
	if instr.Opcode == wasm.OpPrefixMisc {
		if misc, ok := instr.Imm.(wasm.MiscImm); ok {
			if u, ok := miscSubopToUnOp[misc.SubOpcode]; ok {
				return u, true
			}
		}
		return 0, false
	}
	u, ok := opToUnOp[instr.Opcode]
	return u, ok
}

// TryAsCastOp is the total conversion restricted to the cast family
// (conversions, reinterprets, truncations, saturating truncations) of
// UnOpType, per spec.md §4.1's try_as_castop.
func TryAsCastOp(instr wasm.Instruction) (UnOpType, bool) {
	u, ok := TryAsUnOp(instr)
	if !ok || !u.IsCast() {
		return 0, false
	}
	return u, true
}
