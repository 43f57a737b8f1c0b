package luau

import (
	"fmt"
	"strings"

	"github.com/wasm2lua/wasm2lua/backend"
	"github.com/wasm2lua/wasm2lua/translate/analyze"
	"github.com/wasm2lua/wasm2lua/translate/ast"
)

// state carries the per-function bookkeeping: the label id assigned to
// every block some branch actually targets (only ever compared against
// the `desired` scalar, never emitted as a goto label - Luau has none),
// and a pointer to the function's own top-level block (see the funcBlock
// handling in renderBrAsTerminator).
type state struct {
	ctx       *backend.ExprContext
	ids       map[*ast.Block]int
	next      int
	funcBlock *ast.Block
}

func (st *state) id(b *ast.Block) int {
	if id, ok := st.ids[b]; ok {
		return id
	}
	st.next++
	st.ids[b] = st.next
	return st.next
}

func indent(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = "\t" + l
	}
	return out
}

// renderFuncBody renders the function's own top-level block. It never
// wraps in a while loop and never emits a desired-propagation gadget after
// its direct children: nothing encloses the function itself, and every
// `return` is lowered directly (see renderBrAsTerminator) rather than
// through desired, so by construction desired is always fully consumed by
// an inner wrapper before control would ever reach this level.
func renderFuncBody(b *ast.Block, st *state) []string {
	var lines []string
	for _, s := range b.Code {
		lines = append(lines, renderStat(s, nil, st)...)
	}
	termLines, _ := renderTerminator(b, b.Terminator, st)
	return append(lines, termLines...)
}

// renderBlockBody renders b's own statements and terminator, without the
// while-wrapper (the caller, renderWrappedBlock, supplies that).
func renderBlockBody(b *ast.Block, st *state) ([]string, bool) {
	var lines []string
	for _, s := range b.Code {
		lines = append(lines, renderStat(s, b, st)...)
	}
	termLines, terminal := renderTerminator(b, b.Terminator, st)
	return append(lines, termLines...), terminal
}

// renderStat renders one statement of enclosing's body. enclosing is nil
// only for the function's direct top-level statements (see
// renderFuncBody), in which case the desired-propagation gadget - which
// would emit a bare `break` - is skipped, since nothing wraps the
// function body in a loop to break out of.
func renderStat(s ast.Stat, enclosing *ast.Block, st *state) []string {
	if line, ok := backend.EmitSimpleStat(s, st.ctx); ok {
		return []string{line}
	}
	switch n := s.(type) {
	case *ast.Block:
		lines := renderWrappedBlock(n, st)
		if enclosing != nil {
			lines = append(lines, gadget(enclosing, st)...)
		}
		return lines
	case ast.If:
		lines := renderIf(n, st)
		if enclosing != nil {
			lines = append(lines, gadget(enclosing, st)...)
		}
		return lines
	case ast.BrIf:
		cond := backend.Truthy(n.Cond, st.ctx)
		target := enclosing
		if target == nil {
			target = st.funcBlock
		}
		body, terminal := renderBrAsTerminator(n.Target, target, st)
		if !terminal {
			// A forward br_if out of its own block has statements after it,
			// so it leaves the block's while-wrapper with an explicit break.
			body = append(body, "break")
		}
		lines := []string{fmt.Sprintf("if %s then", cond)}
		lines = append(lines, indent(body)...)
		lines = append(lines, "end")
		if enclosing != nil {
			lines = append(lines, gadget(enclosing, st)...)
		}
		return lines
	default:
		return nil
	}
}

// gadget is the desired-propagation check spec.md §4.5 describes: if a
// nested escape set `desired` to enclosing's own id, this wrapper is the
// one it was aimed at - consume it (continue, for a loop) before letting
// the trailing break exit normally; otherwise re-break to keep
// propagating outward. When enclosing is never itself a branch target,
// desired can never equal an id assigned to it, so only the propagate arm
// is reachable and no id needs to be allocated for it.
func gadget(enclosing *ast.Block, st *state) []string {
	if !enclosing.IsTarget() {
		return []string{"if desired then break end"}
	}
	lines := []string{"if desired then", fmt.Sprintf("\tif desired == %d then", st.id(enclosing)), "\t\tdesired = nil"}
	if enclosing.Label == ast.LabelBackward {
		lines = append(lines, "\t\tcontinue")
	}
	lines = append(lines, "\tend", "\tbreak", "end")
	return lines
}

// renderWrappedBlock renders b as its own breakable scope: a block, loop,
// or if-arm all share this same shape, since Luau's `continue` and Lua's
// `break` both only ever act on the nearest enclosing loop.
func renderWrappedBlock(b *ast.Block, st *state) []string {
	body, terminal := renderBlockBody(b, st)
	lines := []string{"while true do"}
	lines = append(lines, indent(body)...)
	if !terminal {
		lines = append(lines, "\tbreak")
	}
	lines = append(lines, "end")
	return lines
}

func renderIf(n ast.If, st *state) []string {
	cond := backend.Truthy(n.Cond, st.ctx)
	lines := []string{fmt.Sprintf("if %s then", cond)}
	lines = append(lines, indent(renderWrappedBlock(n.Then, st))...)
	if n.Else != nil {
		lines = append(lines, "else")
		lines = append(lines, indent(renderWrappedBlock(n.Else, st))...)
	}
	lines = append(lines, "end")
	return lines
}

// renderTerminator renders self's own terminator (self is the block whose
// body is being closed - the one Terminator belongs to).
func renderTerminator(self *ast.Block, t ast.Terminator, st *state) (lines []string, terminal bool) {
	switch n := t.(type) {
	case nil:
		return nil, false
	case ast.Unreachable:
		return []string{`error("unreachable executed")`}, false
	case ast.Br:
		return renderBrAsTerminator(n, self, st)
	case ast.BrTable:
		return renderBrTable(n, self, st), false
	default:
		return nil, false
	}
}

// renderBrAsTerminator renders one branch edge as self's own terminator -
// the one position with no following statement in self's own body to run
// a desired-consuming gadget, so a self-target (the common case of a
// `br` back to the loop it sits in, or out of the block it sits in) is
// lowered directly rather than through desired at all.
func renderBrAsTerminator(br ast.Br, self *ast.Block, st *state) (lines []string, terminal bool) {
	lines = alignLines(br.Align, st.ctx)
	if br.Target == st.funcBlock {
		names := make([]string, st.funcBlock.ResultCount)
		for i := range names {
			names[i] = backend.TempName(i, st.ctx.RegCap)
		}
		if len(names) == 0 {
			return append(lines, "return"), true
		}
		return append(lines, fmt.Sprintf("return %s", strings.Join(names, ", "))), true
	}
	if br.Target == self {
		if self.Label == ast.LabelBackward {
			return append(lines, "continue"), true
		}
		return lines, false
	}
	return append(lines, fmt.Sprintf("desired = %d", st.id(br.Target)), "break"), true
}

func alignLines(a ast.Align, ctx *backend.ExprContext) []string {
	if a.Trivial() {
		return nil
	}
	news := make([]string, a.Length)
	olds := make([]string, a.Length)
	for i := 0; i < a.Length; i++ {
		news[i] = backend.TempName(a.New+i, ctx.RegCap)
		olds[i] = backend.TempName(a.Old+i, ctx.RegCap)
	}
	return []string{fmt.Sprintf("%s = %s", strings.Join(news, ", "), strings.Join(olds, ", "))}
}

// renderBrTable lowers an indexed jump the same way the LJ backend does -
// a chain of range checks over translate/analyze.CompactBrTable's merged
// runs - except each arm lowers through renderBrAsTerminator instead of a
// goto.
func renderBrTable(bt ast.BrTable, self *ast.Block, st *state) []string {
	runs := analyze.CompactBrTable(bt)
	idx := backend.EmitExpr(bt.Index, st.ctx, false)
	lines := []string{fmt.Sprintf("local __br_idx = %s", idx)}
	for i, r := range runs {
		keyword := "if"
		if i > 0 {
			keyword = "elseif"
		}
		var cond string
		if r.Start == r.End {
			cond = fmt.Sprintf("__br_idx == %d", r.Start)
		} else {
			cond = fmt.Sprintf("__br_idx >= %d and __br_idx <= %d", r.Start, r.End)
		}
		body, _ := renderBrAsTerminator(r.Target, self, st)
		lines = append(lines, fmt.Sprintf("%s %s then", keyword, cond))
		lines = append(lines, indent(body)...)
	}
	defBody, _ := renderBrAsTerminator(bt.Default, self, st)
	if len(runs) > 0 {
		lines = append(lines, "else")
		lines = append(lines, indent(defBody)...)
		lines = append(lines, "end")
	} else {
		lines = append(lines, defBody...)
	}
	return lines
}
