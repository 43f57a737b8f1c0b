package luajit

import (
	"fmt"
	"strings"

	"github.com/wasm2lua/wasm2lua/backend"
	"github.com/wasm2lua/wasm2lua/translate/analyze"
	"github.com/wasm2lua/wasm2lua/translate/ast"
)

// state carries the per-function bookkeeping statement rendering needs:
// the label id assigned to every block a branch actually targets, and a
// pointer back to the function's own top-level block (a `return` is
// modeled by the Factory as a branch to it, see handleReturn, so it
// renders as a real Lua `return` rather than a goto/label pair).
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

// renderBlockBody renders b's statements followed by its terminator (if
// any); it does not wrap b in a label, do block, or loop - the caller
// decides that, since the same *ast.Block shape backs the function body,
// a nested Block stat, and an If arm, each wrapped differently.
func renderBlockBody(b *ast.Block, st *state) []string {
	var lines []string
	for _, s := range b.Code {
		lines = append(lines, renderStat(s, st)...)
	}
	lines = append(lines, renderTerminator(b.Terminator, st)...)
	return lines
}

func renderStat(s ast.Stat, st *state) []string {
	if line, ok := backend.EmitSimpleStat(s, st.ctx); ok {
		return []string{line}
	}
	switch n := s.(type) {
	case *ast.Block:
		return renderNestedBlock(n, st)
	case ast.If:
		return renderIf(n, st)
	case ast.BrIf:
		cond := backend.Truthy(n.Cond, st.ctx)
		body := indent(renderBr(n.Target, st))
		lines := []string{fmt.Sprintf("if %s then", cond)}
		lines = append(lines, body...)
		lines = append(lines, "end")
		return lines
	default:
		return nil
	}
}

func renderNestedBlock(b *ast.Block, st *state) []string {
	body := renderBlockBody(b, st)
	if b.Label == ast.LabelBackward {
		lines := []string{fmt.Sprintf("::continue_at_%d::", st.id(b)), "while true do"}
		lines = append(lines, indent(body)...)
		lines = append(lines, "\tbreak", "end")
		return lines
	}
	lines := []string{"do"}
	lines = append(lines, indent(body)...)
	lines = append(lines, "end")
	if b.IsTarget() {
		lines = append(lines, fmt.Sprintf("::continue_at_%d::", st.id(b)))
	}
	return lines
}

func renderIf(n ast.If, st *state) []string {
	cond := backend.Truthy(n.Cond, st.ctx)
	thenLines := renderBlockBody(n.Then, st)
	if n.Then.IsTarget() {
		thenLines = append(thenLines, fmt.Sprintf("::continue_at_%d::", st.id(n.Then)))
	}
	lines := []string{fmt.Sprintf("if %s then", cond)}
	lines = append(lines, indent(thenLines)...)
	if n.Else != nil {
		elseLines := renderBlockBody(n.Else, st)
		if n.Else.IsTarget() {
			elseLines = append(elseLines, fmt.Sprintf("::continue_at_%d::", st.id(n.Else)))
		}
		lines = append(lines, "else")
		lines = append(lines, indent(elseLines)...)
	}
	lines = append(lines, "end")
	return lines
}

func renderTerminator(t ast.Terminator, st *state) []string {
	switch n := t.(type) {
	case nil:
		return nil
	case ast.Unreachable:
		return []string{`error("unreachable executed")`}
	case ast.Br:
		return renderBr(n, st)
	case ast.BrTable:
		return renderBrTable(n, st)
	default:
		return nil
	}
}

// renderBr renders one branch edge: the stack-alignment copy (if any),
// then either a real `return` (the Factory models `return` and falling
// off a block whose target is the function frame identically) or a
// goto to the target's label.
func renderBr(br ast.Br, st *state) []string {
	lines := alignLines(br.Align, st.ctx)
	if br.Target == st.funcBlock {
		names := make([]string, st.funcBlock.ResultCount)
		for i := range names {
			names[i] = backend.TempName(i, st.ctx.RegCap)
		}
		if len(names) == 0 {
			return append(lines, "return")
		}
		return append(lines, fmt.Sprintf("return %s", strings.Join(names, ", ")))
	}
	return append(lines, fmt.Sprintf("goto continue_at_%d", st.id(br.Target)))
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

// renderBrTable lowers an indexed jump by scanning the compacted run list
// (translate/analyze.CompactBrTable) as a chain of range checks, falling
// back to Default outside every run.
func renderBrTable(bt ast.BrTable, st *state) []string {
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
		lines = append(lines, fmt.Sprintf("%s %s then", keyword, cond))
		lines = append(lines, indent(renderBr(r.Target, st))...)
	}
	if len(runs) > 0 {
		lines = append(lines, "else")
		lines = append(lines, indent(renderBr(bt.Default, st))...)
		lines = append(lines, "end")
	} else {
		lines = append(lines, renderBr(bt.Default, st)...)
	}
	return lines
}
