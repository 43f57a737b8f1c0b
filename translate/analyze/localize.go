package analyze

import (
	"sort"

	"github.com/wasm2lua/wasm2lua/translate/ast"
	"github.com/wasm2lua/wasm2lua/translate/visit"
)

// HelperSet is a deduplicated collection of runtime-helper symbol names
// (e.g. "div_u32", "load_i64_i8"), used to decide which locals a function
// hoists from the runtime library at its top (spec.md §4.6 "localize scan").
type HelperSet map[string]struct{}

// Add records sym as referenced.
func (s HelperSet) Add(sym string) { s[sym] = struct{}{} }

// Union folds other into s.
func (s HelperSet) Union(other HelperSet) {
	for sym := range other {
		s.Add(sym)
	}
}

// Sorted returns the set's members in lexical order, the order the
// assembler emits `local div_u32 = rt.div.u32` bindings in.
func (s HelperSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for sym := range s {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// ScanHelpers walks code and collects the symbol of every operator that has
// no inline Lua spelling in dialect d: every load/store, every unary
// operator (the opcode package defines no InlineSymbol for UnOpType - none
// has a native unary form safe across every rounding/NaN/sign-bit edge
// case), memory_grow, call_indirect's dispatch, and any binary/comparison
// operator InlineSymbol rejects for d.
func ScanHelpers(code *ast.Block, d Dialect) HelperSet {
	set := HelperSet{}
	visit.Walk(code, &visit.Visitor{
		Stat: func(s ast.Stat) {
			switch n := s.(type) {
			case ast.StoreAt:
				set.Add(n.Type.Tag().Symbol())
			case ast.MemoryGrow:
				set.Add("memory_grow")
			case ast.CallIndirect:
				set.Add("call_indirect")
			}
		},
		Expr: func(e ast.Expr) {
			switch n := e.(type) {
			case ast.LoadAt:
				set.Add(n.Type.Tag().Symbol())
			case ast.UnOp:
				set.Add(n.Op.Tag().Symbol())
			case ast.BinOp:
				if _, ok := InlineSymbol(n.Op, d); !ok {
					set.Add(n.Op.Tag().Symbol())
				}
			case ast.CmpOp:
				if _, ok := InlineSymbol(n.Op, d); !ok {
					set.Add(n.Op.Tag().Symbol())
				}
			}
		},
	})
	return set
}
