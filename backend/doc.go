// Package backend holds the pieces both dialect backends (backend/luajit,
// backend/luau) share: the Manager interface each of them implements (the
// two dialects spec.md §4.5 describes as "differ[ing] in how labels, loops, and integer literals are rendered,
// and in which operations map to Lua operators versus runtime-library
// calls"), plus the float-literal formatting that is identical in both
// (only the 64-bit integer literal spelling differs between them).
package backend
