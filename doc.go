// Package wasm2lua translates a decoded WebAssembly module into Lua source
// for one of two dialects: LJ (LuaJIT, 64-bit integers via ffi cdata) or LU
// (Luau, no native 64-bit integers, no goto).
//
// Translate is the single entry point: it resolves every function's type
// arity through translate/oracle, lowers each function body's operator
// stream through translate/factory into a structured IR
// (translate/ast.FuncData), renders each one to Lua text through the
// chosen backend/luajit or backend/luau Manager, and assembles the
// results into a complete Lua module through the assemble package.
package wasm2lua
