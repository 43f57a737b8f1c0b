package opcode

import "github.com/wasm2lua/wasm2lua/wasm"

// LoadType tags a Wasm memory load by result type and source width/signedness.
type LoadType byte

const (
	LoadI32 LoadType = iota
	LoadI64
	LoadF32
	LoadF64
	LoadI32I8
	LoadI32U8
	LoadI32I16
	LoadI32U16
	LoadI64I8
	LoadI64U8
	LoadI64I16
	LoadI64U16
	LoadI64I32
	LoadI64U32
)

var loadTags = map[LoadType]Tag{
	LoadI32:    {"load", "i32"},
	LoadI64:    {"load", "i64"},
	LoadF32:    {"load", "f32"},
	LoadF64:    {"load", "f64"},
	LoadI32I8:  {"load", "i32_i8"},
	LoadI32U8:  {"load", "i32_u8"},
	LoadI32I16: {"load", "i32_i16"},
	LoadI32U16: {"load", "i32_u16"},
	LoadI64I8:  {"load", "i64_i8"},
	LoadI64U8:  {"load", "i64_u8"},
	LoadI64I16: {"load", "i64_i16"},
	LoadI64U16: {"load", "i64_u16"},
	LoadI64I32: {"load", "i64_i32"},
	LoadI64U32: {"load", "i64_u32"},
}

// Tag returns the (head, tail) name pair for the load type.
func (l LoadType) Tag() Tag { return loadTags[l] }

// ResultType returns the Wasm value type this load produces on the stack.
func (l LoadType) ResultType() wasm.ValType {
	switch l {
	case LoadI64, LoadI64I8, LoadI64U8, LoadI64I16, LoadI64U16, LoadI64I32, LoadI64U32:
		return wasm.ValI64
	case LoadF32:
		return wasm.ValF32
	case LoadF64:
		return wasm.ValF64
	default:
		return wasm.ValI32
	}
}

// TryAsLoad classifies a decoded load instruction. ok is false if instr is
// not a load opcode.
func TryAsLoad(instr wasm.Instruction) (lt LoadType, imm wasm.MemoryImm, ok bool) {
	imm, isMem := instr.Imm.(wasm.MemoryImm)
	if !isMem {
		return 0, imm, false
	}
	switch instr.Opcode {
	case wasm.OpI32Load:
		return LoadI32, imm, true
	case wasm.OpI64Load:
		return LoadI64, imm, true
	case wasm.OpF32Load:
		return LoadF32, imm, true
	case wasm.OpF64Load:
		return LoadF64, imm, true
	case wasm.OpI32Load8S:
		return LoadI32I8, imm, true
	case wasm.OpI32Load8U:
		return LoadI32U8, imm, true
	case wasm.OpI32Load16S:
		return LoadI32I16, imm, true
	case wasm.OpI32Load16U:
		return LoadI32U16, imm, true
	case wasm.OpI64Load8S:
		return LoadI64I8, imm, true
	case wasm.OpI64Load8U:
		return LoadI64U8, imm, true
	case wasm.OpI64Load16S:
		return LoadI64I16, imm, true
	case wasm.OpI64Load16U:
		return LoadI64U16, imm, true
	case wasm.OpI64Load32S:
		return LoadI64I32, imm, true
	case wasm.OpI64Load32U:
		return LoadI64U32, imm, true
	default:
		return 0, imm, false
	}
}

// StoreType tags a Wasm memory store by the value type stored and, for the
// nK forms, the truncated bit width.
type StoreType byte

const (
	StoreI32 StoreType = iota
	StoreI64
	StoreF32
	StoreF64
	StoreI32N8
	StoreI32N16
	StoreI64N8
	StoreI64N16
	StoreI64N32
)

var storeTags = map[StoreType]Tag{
	StoreI32:    {"store", "i32"},
	StoreI64:    {"store", "i64"},
	StoreF32:    {"store", "f32"},
	StoreF64:    {"store", "f64"},
	StoreI32N8:  {"store", "i32_n8"},
	StoreI32N16: {"store", "i32_n16"},
	StoreI64N8:  {"store", "i64_n8"},
	StoreI64N16: {"store", "i64_n16"},
	StoreI64N32: {"store", "i64_n32"},
}

// Tag returns the (head, tail) name pair for the store type.
func (s StoreType) Tag() Tag { return storeTags[s] }

// ValueType returns the Wasm value type of the operand being stored.
func (s StoreType) ValueType() wasm.ValType {
	switch s {
	case StoreI64, StoreI64N8, StoreI64N16, StoreI64N32:
		return wasm.ValI64
	case StoreF32:
		return wasm.ValF32
	case StoreF64:
		return wasm.ValF64
	default:
		return wasm.ValI32
	}
}

// TryAsStore classifies a decoded store instruction.
func TryAsStore(instr wasm.Instruction) (st StoreType, imm wasm.MemoryImm, ok bool) {
	imm, isMem := instr.Imm.(wasm.MemoryImm)
	if !isMem {
		return 0, imm, false
	}
	switch instr.Opcode {
	case wasm.OpI32Store:
		return StoreI32, imm, true
	case wasm.OpI64Store:
		return StoreI64, imm, true
	case wasm.OpF32Store:
		return StoreF32, imm, true
	case wasm.OpF64Store:
		return StoreF64, imm, true
	case wasm.OpI32Store8:
		return StoreI32N8, imm, true
	case wasm.OpI32Store16:
		return StoreI32N16, imm, true
	case wasm.OpI64Store8:
		return StoreI64N8, imm, true
	case wasm.OpI64Store16:
		return StoreI64N16, imm, true
	case wasm.OpI64Store32:
		return StoreI64N32, imm, true
	default:
		return 0, imm, false
	}
}
