package wasm2lua

import (
	"github.com/wasm2lua/wasm2lua/backend"
	"github.com/wasm2lua/wasm2lua/backend/luajit"
	"github.com/wasm2lua/wasm2lua/backend/luau"
)

// Dialect selects which Lua target Translate renders.
type Dialect int

const (
	// DialectLuaJIT renders LJ-flavored Lua: 64-bit integers as LL-suffixed
	// ffi cdata literals, goto-based control flow.
	DialectLuaJIT Dialect = iota
	// DialectLuau renders LU-flavored Lua: runtime-helper-backed 64-bit
	// integers, no goto, break/continue-based control flow.
	DialectLuau
)

func (d Dialect) manager() backend.Manager {
	if d == DialectLuau {
		return luau.New()
	}
	return luajit.New()
}

// Config configures Translate. The zero value selects DialectLuaJIT.
type Config struct {
	Dialect Dialect
}
