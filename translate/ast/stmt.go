package ast

import (
	"github.com/wasm2lua/wasm2lua/translate/opcode"
)

// Stat is a side-effecting or control-flow IR node (spec.md §3.2).
type Stat interface {
	statNode()
}

// Range is a half-open span of temporary indices, used for the multiple
// results a Call/CallIndirect may produce.
type Range struct {
	Start int
	End   int
}

// Len returns the number of temporaries in the range.
func (r Range) Len() int { return r.End - r.Start }

// BrIf is a conditional branch that does not terminate its containing
// block: control falls through to the next statement when Cond is falsy
// (spec.md §4.4's br_if, which "continue[s] normally").
type BrIf struct {
	Cond   Expr
	Target Br
}

// If is Wasm's structured if/else.
type If struct {
	Cond Expr
	Then *Block
	Else *Block // nil when there is no else arm
}

// Call invokes a statically-known function by index.
type Call struct {
	Args     []Expr
	Func     uint32
	Result   Range
}

// CallIndirect invokes a function looked up dynamically in a table.
type CallIndirect struct {
	Index   Expr
	Args    []Expr
	Type    uint32
	Table   uint32
	Result  Range
}

// SetTemporary commits a value into a function-local temporary slot. This
// is the sole mechanism (spec.md §4.3 "leaking") by which a pending
// expression becomes an observable, ordered side effect.
type SetTemporary struct {
	Value Expr
	Index int
}

// SetLocal writes a Wasm local.
type SetLocal struct {
	Value Expr
	Index uint32
}

// SetGlobal writes a module global.
type SetGlobal struct {
	Value Expr
	Index uint32
}

// StoreAt writes Value to linear memory at Pointer+Offset.
type StoreAt struct {
	Pointer Expr
	Value   Expr
	Type    opcode.StoreType
	Memory  uint32
	Offset  uint64
}

// MemoryGrow attempts to grow a linear memory by Delta pages, storing the
// previous page count (or -1 on failure) into the temporary at Result.
// Modeled as a Statement, not an Expr, because it is the one "expression
// shaped" Wasm operator with an observable side effect (spec.md §3.2).
type MemoryGrow struct {
	Delta  Expr
	Memory uint32
	Result int
}

func (*Block) statNode()      {}
func (BrIf) statNode()        {}
func (If) statNode()          {}
func (Call) statNode()        {}
func (CallIndirect) statNode() {}
func (SetTemporary) statNode() {}
func (SetLocal) statNode()    {}
func (SetGlobal) statNode()   {}
func (StoreAt) statNode()     {}
func (MemoryGrow) statNode()  {}
