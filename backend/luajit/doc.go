// Package luajit lowers a built ast.FuncData to Lua text for the LJ
// dialect (spec.md §4.5): 64-bit integers as LL-suffixed literals relying
// on LuaJIT's ffi cdata for native arithmetic, and structured control flow
// rendered with goto/label pairs rather than Luau's break-based gadget.
package luajit
