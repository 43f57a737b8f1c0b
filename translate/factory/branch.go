package factory

import (
	"github.com/wasm2lua/wasm2lua/translate/ast"
)

// handleBr sets the current frame's terminator to an unconditional branch
// and enters nested-unreachable mode (spec.md §4.4).
func (fa *Factory) handleBr(labelIdx uint32) {
	cur := fa.top()
	target := fa.resolveTarget(labelIdx)
	align := cur.stk.GetBrAlignment(target.stk.Base(), target.brArity())
	cur.terminator = ast.Br{Target: target.block, Align: align}
	target.branchedTo = true
	fa.enterUnreachable()
}

// handleBrIf emits a conditional branch statement; control falls through
// when the condition is falsy, so this does not touch the terminator.
func (fa *Factory) handleBrIf(labelIdx uint32) error {
	cur := fa.top()
	cond, err := cur.stk.Pop()
	if err != nil {
		return err
	}
	target := fa.resolveTarget(labelIdx)
	align := cur.stk.GetBrAlignment(target.stk.Base(), target.brArity())
	cur.code = append(cur.code, ast.BrIf{Cond: cond, Target: ast.Br{Target: target.block, Align: align}})
	target.branchedTo = true
	return nil
}

// handleBrTable sets the current frame's terminator to an indexed jump
// table with a default target, and enters nested-unreachable mode.
func (fa *Factory) handleBrTable(labels []uint32, def uint32) error {
	cur := fa.top()
	idx, err := cur.stk.Pop()
	if err != nil {
		return err
	}
	targets := make([]ast.Br, len(labels))
	for i, l := range labels {
		t := fa.resolveTarget(l)
		align := cur.stk.GetBrAlignment(t.stk.Base(), t.brArity())
		targets[i] = ast.Br{Target: t.block, Align: align}
		t.branchedTo = true
	}
	dt := fa.resolveTarget(def)
	dalign := cur.stk.GetBrAlignment(dt.stk.Base(), dt.brArity())
	defaultBr := ast.Br{Target: dt.block, Align: dalign}
	dt.branchedTo = true

	cur.terminator = ast.BrTable{Index: idx, Targets: targets, Default: defaultBr}
	fa.enterUnreachable()
	return nil
}

// handleReturn is equivalent to a branch to the outermost (function) frame.
func (fa *Factory) handleReturn() {
	cur := fa.top()
	target := fa.frames[0]
	align := cur.stk.GetBrAlignment(target.stk.Base(), target.resultCount)
	cur.terminator = ast.Br{Target: target.block, Align: align}
	target.branchedTo = true
	fa.enterUnreachable()
}

func (fa *Factory) handleUnreachable() {
	fa.top().terminator = ast.Unreachable{}
	fa.enterUnreachable()
}

// enterUnreachable begins skipping operators until the End/Else that closes
// the frame whose terminator was just set, per spec.md §4.4's
// nested-unreachable mode.
func (fa *Factory) enterUnreachable() {
	fa.skipping = true
	fa.skipDepth = 0
}
