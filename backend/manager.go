package backend

import (
	"github.com/wasm2lua/wasm2lua/translate/analyze"
	"github.com/wasm2lua/wasm2lua/translate/ast"
)

// Manager is the entry point the module assembler (package assemble) calls
// once per function body. Each dialect package (backend/luajit,
// backend/luau) implements it by composing its own expression/statement/
// manager trio (spec.md's "three-level backend factoring").
type Manager interface {
	Dialect() analyze.Dialect
	// EmitFunction lowers fn to the statement list inside its
	// `function(...) ... end` wrapper (the wrapper itself, and the
	// per-function localize/memory hoists above it, are the module
	// assembler's job - it needs the helper/memory sets from every
	// function before it can decide what to hoist where). Helpers and
	// memories are the sets this function body references, for the
	// assembler to fold into the module-wide union.
	EmitFunction(fn *ast.FuncData) (body string, helpers analyze.HelperSet, memories analyze.MemorySet, err error)
	// ExprContext returns the dialect's expression-rendering context, so
	// the assembler can render init-expression values (global/element/
	// data offsets) with the same literal formatting rules - notably
	// FormatI64 - as function bodies, without needing to know which
	// dialect package it is talking to.
	ExprContext() *ExprContext
}
