// Package ast defines the structured intermediate representation the
// Factory builds from a Wasm function's operator stream, and that the
// backends lower to Lua text.
//
// The tree generalizes the teacher's asyncify/internal/ir.Node shape
// (SeqNode/BlockNode/IfNode replaying raw instructions) into a Lua-oriented
// IR: expressions are pure, side-effecting operators become statements, and
// every temporary/local/global/memory access is explicit rather than
// implicit stack state.
package ast
