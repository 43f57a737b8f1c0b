package factory

import (
	"github.com/wasm2lua/wasm2lua/translate/ast"
	"github.com/wasm2lua/wasm2lua/translate/stack"
)

// ctrlKind discriminates the five shapes of control frame the Factory
// opens: the function body itself, a forward block, a loop (backward
// target), and the two arms of an if.
type ctrlKind int

const (
	ctrlFunc ctrlKind = iota
	ctrlBlock
	ctrlLoop
	ctrlIf
	ctrlElse
)

// frame is one open control construct: its own virtual stack, the
// statements accumulated so far, and the block it will finish into.
type frame struct {
	kind        ctrlKind
	stk         *stack.Stack
	code        []ast.Stat
	terminator  ast.Terminator
	block       *ast.Block // allocated at open time; pointer identity is the branch target
	paramCount  int
	resultCount int
	branchedTo  bool
	cond        ast.Expr // ctrlIf only

	// ctrlElse only: where to patch the matching If's Else field once this
	// arm closes.
	patchParent *frame
	patchIndex  int
}

// brArity is the number of values a branch to this frame carries: a loop's
// branches restart it with its params, everything else delivers its results.
func (fr *frame) brArity() int {
	if fr.kind == ctrlLoop {
		return fr.paramCount
	}
	return fr.resultCount
}

func (fr *frame) labelKind() ast.LabelKind {
	if fr.kind == ctrlLoop {
		return ast.LabelBackward
	}
	return ast.LabelForward
}

func (fa *Factory) top() *frame { return fa.frames[len(fa.frames)-1] }

func (fa *Factory) popFrame() *frame {
	n := len(fa.frames)
	fr := fa.frames[n-1]
	fa.frames = fa.frames[:n-1]
	return fr
}

// resolveTarget maps a relative label index (depth from the innermost open
// frame) to the frame it names.
func (fa *Factory) resolveTarget(labelIdx uint32) *frame {
	return fa.frames[len(fa.frames)-1-int(labelIdx)]
}

// startBlock implements spec.md §4.4's block lifecycle for Forward (block),
// Backward (loop), and If frames. Else is constructed separately by
// startElse, since its initial stack is recovered rather than split off.
func (fa *Factory) startBlock(kind ctrlKind, blockType int32, cond ast.Expr) error {
	enclosing := fa.top()
	numParam, numResult, err := fa.oracle.ByBlockType(blockType)
	if err != nil {
		return err
	}

	enclosing.stk.LeakInto(&enclosing.code, nil)

	childStk, err := enclosing.stk.SplitLast(numParam)
	if err != nil {
		return err
	}
	enclosing.stk.PushTemporary(numResult)

	fa.frames = append(fa.frames, &frame{
		kind:        kind,
		stk:         childStk,
		block:       &ast.Block{},
		paramCount:  numParam,
		resultCount: numResult,
		cond:        cond,
	})
	return nil
}

// startElse reopens the else arm of the If frame just closed by popFrame,
// reusing its param/result arity and recovering its initial stack from the
// temporary range the then arm already leaked into (spec.md §4.4).
func (fa *Factory) startElse(thenFr *frame, parent *frame, patchIndex int) {
	base := parent.stk.TopIndex(thenFr.resultCount)
	childStk := stack.Restore(fa.alloc, base, thenFr.paramCount)
	fa.frames = append(fa.frames, &frame{
		kind:        ctrlElse,
		stk:         childStk,
		block:       &ast.Block{},
		paramCount:  thenFr.paramCount,
		resultCount: thenFr.resultCount,
		patchParent: parent,
		patchIndex:  patchIndex,
	})
}

// finishBlock leaks whatever remains pending in fr's own stack and copies
// its accumulated state into fr.block.
func finishBlock(fr *frame) {
	fr.stk.LeakInto(&fr.code, nil)
	fr.block.Terminator = fr.terminator
	fr.block.Code = fr.code
	fr.block.ParamCount = fr.paramCount
	fr.block.ResultCount = fr.resultCount
	if fr.branchedTo {
		fr.block.Label = fr.labelKind()
	}
}

// handleElse closes the then arm on an `else` opcode and opens the else arm
// in its place.
func (fa *Factory) handleElse() {
	thenFr := fa.popFrame()
	finishBlock(thenFr)
	parent := fa.top()
	idx := len(parent.code)
	parent.code = append(parent.code, ast.If{Cond: thenFr.cond, Then: thenFr.block})
	fa.startElse(thenFr, parent, idx)
}

// handleEnd closes the innermost open frame, attaching it to its parent (or,
// for the function frame, recording the finished body).
func (fa *Factory) handleEnd() {
	fr := fa.popFrame()
	finishBlock(fr)
	switch fr.kind {
	case ctrlFunc:
		fa.funcBlock = fr.block
	case ctrlBlock, ctrlLoop:
		parent := fa.top()
		parent.code = append(parent.code, fr.block)
	case ctrlIf:
		parent := fa.top()
		parent.code = append(parent.code, ast.If{Cond: fr.cond, Then: fr.block})
	case ctrlElse:
		ifStmt := fr.patchParent.code[fr.patchIndex].(ast.If)
		ifStmt.Else = fr.block
		fr.patchParent.code[fr.patchIndex] = ifStmt
	}
}
