package analyze

import "github.com/wasm2lua/wasm2lua/translate/ast"

// BrTableRun is a maximal contiguous run of br_table entries that all
// branch to the same target with the same stack alignment - the unit a
// backend compares the scrutinee against instead of switching on every
// scrutinee value (spec.md §4.5 "Branch-table compaction"). Both backends
// test the runs one after another in table order, as an if/elseif chain of
// range checks; no binary search over the runs is performed.
type BrTableRun struct {
	Start, End int // inclusive range of scrutinee values covered by this run
	Target     ast.Br
}

// CompactBrTable merges bt's flat target list into runs of consecutive
// entries sharing an identical Br (same target block and same Align), so a
// backend emits one comparison per run rather than one per table entry.
// Two entries with the same Target but different Align are never merged:
// they rename the stack differently and so must stay distinguishable.
func CompactBrTable(bt ast.BrTable) []BrTableRun {
	if len(bt.Targets) == 0 {
		return nil
	}
	runs := make([]BrTableRun, 0, len(bt.Targets))
	start := 0
	for i := 1; i <= len(bt.Targets); i++ {
		if i == len(bt.Targets) || bt.Targets[i] != bt.Targets[start] {
			runs = append(runs, BrTableRun{Start: start, End: i - 1, Target: bt.Targets[start]})
			start = i
		}
	}
	return runs
}
