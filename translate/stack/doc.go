// Package stack implements the per-function value stack the Factory
// virtualizes the Wasm operand stack against (spec.md §4.3). Rather than
// holding concrete runtime values, each slot holds a pending IR expression
// plus the set of Wasm state it reads, so the Factory can defer committing
// an expression to a statement until some later operator's side effect
// would otherwise reorder past it.
//
// Temporary indices are drawn from a single per-function namespace and are
// assigned by slot position: a slot at stack depth previous+i is, if ever
// leaked, committed to temporary index previous+i. split_last hands a
// suffix of slots to a child frame whose previous equals that suffix's
// absolute base, so sibling blocks that never coexist can reuse the same
// temporary indices (spec.md §3.3 invariant 3).
package stack
