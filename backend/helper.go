package backend

import "strings"

// rawHelperBindings holds the symbols translate/analyze.ScanHelpers adds
// ad-hoc (ast.MemoryGrow, ast.CallIndirect) rather than deriving from a
// Tag().Symbol() "head_tail" pair, so they must bypass the generic splitter
// below with a fixed binding of their own.
//
// memory_grow binds to rt.allocator.grow, not the "rt.memory.grow" the
// generic split would produce (memory/grow split on "_") - spec.md §6.3
// defines the allocator as owning new/grow/init, and the canonical backend
// (original_source/codegen-luau/src/backend/expression.rs) emits
// rt.allocator.grow(memory_at_N, delta) accordingly; only a superseded
// vintage of that backend ever called it rt.memory.grow.
//
// call_indirect binds to a single rt.call_indirect helper rather than
// "rt.call.indirect": unlike the original backend's bare
// `TABLE_LIST[n].data[idx](...)` indexing, this compiler's CallIndirect
// statement also carries the callee's expected type index so the helper
// can raise the indirect-call type-mismatch trap spec.md §7 names, which
// makes it one function doing a lookup-check-call, not a namespaced
// operation on a "call" table.
var rawHelperBindings = map[string]string{
	"memory_grow":   "rt.allocator.grow",
	"call_indirect": "rt.call_indirect",
}

// HelperBinding renders the hoisted local declaration's right-hand side for
// a runtime-helper symbol (spec.md §4.6, §6.2: "the emitted code references
// rt.<head>.<tail> for every operation" lacking an inline Lua spelling).
// sym is usually the "head_tail" form translate/opcode.Tag.Symbol()
// produces; head never itself contains an underscore, so splitting on the
// first one recovers the (head, tail) pair the rt table is keyed by. The
// symbols in rawHelperBindings are the exception: they are ad-hoc strings,
// not Tag().Symbol() output, and are bound directly instead.
func HelperBinding(sym string) string {
	if rt, ok := rawHelperBindings[sym]; ok {
		return rt
	}
	head, tail, _ := strings.Cut(sym, "_")
	return "rt." + head + "." + tail
}
