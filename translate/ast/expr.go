package ast

import (
	"github.com/wasm2lua/wasm2lua/translate/opcode"
	"github.com/wasm2lua/wasm2lua/wasm"
)

// Expr is a pure value-producing IR node: no observable side effects. The
// sole exception noted in spec.md §3.2 (MemoryGrow) is modeled as a
// Statement, not an Expr, precisely so this invariant holds without
// exception in the type system.
type Expr interface {
	exprNode()
}

// Select is Wasm's select instruction: pick OnTrue or OnFalse based on
// Cond, evaluating both operands (Wasm select is not short-circuiting).
type Select struct {
	Cond    Expr
	OnTrue  Expr
	OnFalse Expr
}

// GetTemporary reads a function-local temporary slot (spec.md §3.3 invariant 3).
type GetTemporary struct {
	Index int
}

// GetLocal reads a Wasm local (including parameters, which occupy the low indices).
type GetLocal struct {
	Index uint32
}

// GetGlobal reads a module global.
type GetGlobal struct {
	Index uint32
}

// LoadAt reads from linear memory at Pointer+Offset.
type LoadAt struct {
	Pointer Expr
	Type    opcode.LoadType
	Memory  uint32
	Offset  uint64
}

// MemorySize reads the current size, in pages, of a linear memory.
type MemorySize struct {
	Memory uint32
}

// ValueI32, ValueI64, ValueF32, ValueF64 are Wasm constant literals.
type (
	ValueI32 struct{ Value int32 }
	ValueI64 struct{ Value int64 }
	ValueF32 struct{ Value float32 }
	ValueF64 struct{ Value float64 }
)

// UnOp applies a unary operator (arithmetic, conversion, or reinterpret) to Rhs.
type UnOp struct {
	Rhs Expr
	Op  opcode.UnOpType
}

// BinOp applies a binary operator to Lhs and Rhs, in that evaluation order.
type BinOp struct {
	Lhs Expr
	Rhs Expr
	Op  opcode.BinOpType
}

// CmpOp applies a comparison to Lhs and Rhs, in that evaluation order.
// Backends wrap the result as `(expr and 1 or 0)` to bridge Wasm's
// integer-boolean convention, except when used directly as an `if`/BrIf/
// select condition (spec.md §4.5).
type CmpOp struct {
	Lhs Expr
	Rhs Expr
	Op  opcode.CmpOpType
}

func (Select) exprNode()     {}
func (GetTemporary) exprNode() {}
func (GetLocal) exprNode()   {}
func (GetGlobal) exprNode()  {}
func (LoadAt) exprNode()     {}
func (MemorySize) exprNode() {}
func (ValueI32) exprNode()   {}
func (ValueI64) exprNode()   {}
func (ValueF32) exprNode()   {}
func (ValueF64) exprNode()   {}
func (UnOp) exprNode()       {}
func (BinOp) exprNode()      {}
func (CmpOp) exprNode()      {}

// ValType returns the Wasm value type an expression evaluates to, when
// statically known from the node alone (no type environment needed).
func ValType(e Expr) wasm.ValType {
	switch n := e.(type) {
	case ValueI32:
		return wasm.ValI32
	case ValueI64:
		return wasm.ValI64
	case ValueF32:
		return wasm.ValF32
	case ValueF64:
		return wasm.ValF64
	case LoadAt:
		return n.Type.ResultType()
	case MemorySize:
		return wasm.ValI32
	case UnOp:
		return n.Op.ResultType()
	case BinOp:
		return n.Op.ResultType()
	case CmpOp:
		return wasm.ValI32
	default:
		return 0
	}
}
