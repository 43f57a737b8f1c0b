package backend

import (
	"fmt"
	"strings"

	"github.com/wasm2lua/wasm2lua/translate/ast"
)

// EmitSimpleStat renders the statement kinds whose Lua shape never depends
// on which dialect is emitting (spec.md §4.5: "SetTemporary, SetLocal,
// SetGlobal, StoreAt: direct"), plus Call/CallIndirect/MemoryGrow, none of
// which touch control flow. ok is false for the control-flow statements
// (Block, If, BrIf) that each dialect package renders itself.
func EmitSimpleStat(s ast.Stat, ctx *ExprContext) (line string, ok bool) {
	switch n := s.(type) {
	case ast.SetTemporary:
		return fmt.Sprintf("%s = %s", ctx.tempName(n.Index), EmitExpr(n.Value, ctx, false)), true
	case ast.SetLocal:
		return fmt.Sprintf("%s = %s", ctx.localName(n.Index), EmitExpr(n.Value, ctx, false)), true
	case ast.SetGlobal:
		return fmt.Sprintf("GLOBAL_LIST[%d].value = %s", n.Index, EmitExpr(n.Value, ctx, false)), true
	case ast.StoreAt:
		ptr := EmitExpr(n.Pointer, ctx, false)
		if n.Offset != 0 {
			ptr = fmt.Sprintf("%s + %d", ptr, n.Offset)
		}
		return fmt.Sprintf("%s(memory_at_%d, %s, %s)", n.Type.Tag().Symbol(), n.Memory, ptr, EmitExpr(n.Value, ctx, false)), true
	case ast.Call:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = EmitExpr(a, ctx, false)
		}
		call := fmt.Sprintf("FUNC_LIST[%d](%s)", n.Func, strings.Join(args, ", "))
		return assignResult(n.Result, ctx, call), true
	case ast.CallIndirect:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = EmitExpr(a, ctx, false)
		}
		call := fmt.Sprintf("call_indirect(TABLE_LIST[%d], %d, %s, %s)",
			n.Table, n.Type, EmitExpr(n.Index, ctx, false), strings.Join(args, ", "))
		return assignResult(n.Result, ctx, call), true
	case ast.MemoryGrow:
		call := fmt.Sprintf("memory_grow(memory_at_%d, %s)", n.Memory, EmitExpr(n.Delta, ctx, false))
		return fmt.Sprintf("%s = %s", ctx.tempName(n.Result), call), true
	default:
		return "", false
	}
}

func assignResult(r ast.Range, ctx *ExprContext, rhs string) string {
	if r.Len() == 0 {
		return rhs
	}
	names := make([]string, r.Len())
	for i := range names {
		names[i] = ctx.tempName(r.Start + i)
	}
	return fmt.Sprintf("%s = %s", strings.Join(names, ", "), rhs)
}
