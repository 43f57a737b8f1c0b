package ast

import "github.com/wasm2lua/wasm2lua/wasm"

// LocalSlot is a run of locals sharing a declared type, as a function body
// declares them (spec.md §3.2 FuncData.local_data).
type LocalSlot struct {
	Count   uint32
	ValType wasm.ValType
}

// FuncData is the built, immutable-after-construction IR for one function
// body (spec.md §3.2, §3.4: "constructed once per code-section body,
// referenced by the backend and by analyzers; never mutated afterwards").
type FuncData struct {
	Code       *Block
	Locals     []LocalSlot
	NumParam   int
	NumResult  int
	NumStack   int
	Name       string // from the Wasm name section, if present; "" otherwise
	ImportOnly bool   // true for imported functions, which have no Code
}
