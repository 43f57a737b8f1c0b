// Package analyze implements the read-only scans the backends run over a
// built ast.Block before emitting Lua text (spec.md §4.6): which linear
// memories a function touches, which runtime helpers it needs localized as
// function-local bindings, and the branch-table and inline-operator
// fast-paths the original Wasynth implementation keeps as standalone
// analyzer modules rather than inlining into the backend switch.
//
// Nothing here mutates the ast.Block it scans; every result is a fresh set
// or slice the caller (a backend, or the module assembler merging across
// every function) owns outright.
package analyze
