// Package assemble produces the final Lua module text (spec.md §4.7): the
// hoisted helper/memory locals, the FUNC_LIST/TABLE_LIST/MEMORY_LIST/
// GLOBAL_LIST tables, one FUNC_LIST entry per defined function, a
// run_init_code closure that materializes table/memory/global/element/data
// initializers, and the final `return function(wasm) ... end` linker.
//
// It accumulates these pieces the way
// linker/internal/wasm/synthmod.go's SynthModuleBuilder accumulates binary
// sections into a byte buffer - here the sections are Lua source fragments
// instead.
package assemble
