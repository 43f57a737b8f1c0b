package analyze

import (
	"sort"

	"github.com/wasm2lua/wasm2lua/translate/ast"
	"github.com/wasm2lua/wasm2lua/translate/visit"
)

// MemorySet is a deduplicated collection of linear-memory indices, used to
// decide which `memory_at_N` locals the module assembler hoists (spec.md
// §4.7).
type MemorySet map[uint32]struct{}

// Add records idx as touched.
func (s MemorySet) Add(idx uint32) { s[idx] = struct{}{} }

// Union folds other into s.
func (s MemorySet) Union(other MemorySet) {
	for idx := range other {
		s.Add(idx)
	}
}

// Sorted returns the set's members in ascending order.
func (s MemorySet) Sorted() []uint32 {
	out := make([]uint32, 0, len(s))
	for idx := range s {
		out = append(out, idx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ScanMemory walks code and returns every linear-memory index it reads,
// writes, sizes, or grows (spec.md §4.6 "memory-index scan").
func ScanMemory(code *ast.Block) MemorySet {
	set := MemorySet{}
	visit.Walk(code, &visit.Visitor{
		Stat: func(s ast.Stat) {
			switch n := s.(type) {
			case ast.StoreAt:
				set.Add(n.Memory)
			case ast.MemoryGrow:
				set.Add(n.Memory)
			}
		},
		Expr: func(e ast.Expr) {
			switch n := e.(type) {
			case ast.LoadAt:
				set.Add(n.Memory)
			case ast.MemorySize:
				set.Add(n.Memory)
			}
		},
	})
	return set
}
