package luajit

import (
	"strings"

	"github.com/wasm2lua/wasm2lua/backend"
	"github.com/wasm2lua/wasm2lua/translate/analyze"
	"github.com/wasm2lua/wasm2lua/translate/ast"
)

// Manager is the LJ-dialect implementation of backend.Manager.
type Manager struct{}

// New builds the LJ backend manager. It carries no state of its own: every
// field that varies per function lives in the per-call state/ExprContext.
func New() *Manager { return &Manager{} }

func (m *Manager) Dialect() analyze.Dialect { return analyze.DialectLuaJIT }

// ExprContext returns the shared LJ expression-rendering context.
func (m *Manager) ExprContext() *backend.ExprContext {
	return &backend.ExprContext{
		RegCap:    RegisterCap,
		FormatI64: FormatI64,
		Dialect:   analyze.DialectLuaJIT,
	}
}

func (m *Manager) EmitFunction(fn *ast.FuncData) (string, analyze.HelperSet, analyze.MemorySet, error) {
	ctx := m.ExprContext()
	st := &state{ctx: ctx, ids: map[*ast.Block]int{}, funcBlock: fn.Code}

	lines := backend.DeclarePrelude(fn, ctx)
	lines = append(lines, renderBlockBody(fn.Code, st)...)
	if fn.Code.Terminator == nil && fn.NumResult > 0 {
		lines = append(lines, renderBr(ast.Br{Target: fn.Code}, st)...)
	}

	helpers := analyze.ScanHelpers(fn.Code, analyze.DialectLuaJIT)
	memories := analyze.ScanMemory(fn.Code)
	return strings.Join(lines, "\n"), helpers, memories, nil
}
