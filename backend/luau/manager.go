package luau

import (
	"strings"

	"github.com/wasm2lua/wasm2lua/backend"
	"github.com/wasm2lua/wasm2lua/translate/analyze"
	"github.com/wasm2lua/wasm2lua/translate/ast"
)

// Manager is the LU-dialect implementation of backend.Manager.
type Manager struct{}

// New builds the LU backend manager. It carries no state of its own: every
// field that varies per function lives in the per-call state/ExprContext.
func New() *Manager { return &Manager{} }

func (m *Manager) Dialect() analyze.Dialect { return analyze.DialectLuau }

// ExprContext returns the shared LU expression-rendering context.
func (m *Manager) ExprContext() *backend.ExprContext {
	return &backend.ExprContext{
		RegCap:    backend.NoSpillCap,
		FormatI64: FormatI64,
		Dialect:   analyze.DialectLuau,
	}
}

func (m *Manager) EmitFunction(fn *ast.FuncData) (string, analyze.HelperSet, analyze.MemorySet, error) {
	ctx := m.ExprContext()
	st := &state{ctx: ctx, ids: map[*ast.Block]int{}, funcBlock: fn.Code}

	lines := backend.DeclarePrelude(fn, ctx)
	if fn.Code.IsTarget() {
		lines = append(lines, "local desired = nil")
	}
	lines = append(lines, renderFuncBody(fn.Code, st)...)

	helpers := analyze.ScanHelpers(fn.Code, analyze.DialectLuau)
	memories := analyze.ScanMemory(fn.Code)
	return strings.Join(lines, "\n"), helpers, memories, nil
}
