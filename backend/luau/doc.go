// Package luau lowers a built ast.FuncData to Lua text for the LU dialect
// (spec.md §4.5): 64-bit integers built from i64_from_u32 helper calls (no
// native int64 type), and structured control flow rendered without goto -
// every labeled construct is a `while true do ... break end`, and a branch
// to an outer construct propagates outward through a `desired` scalar each
// enclosing wrapper checks and either consumes (continuing a loop, or just
// letting its own trailing break fire for a forward block) or re-breaks to
// keep propagating.
package luau
