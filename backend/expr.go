package backend

import (
	"fmt"
	"strconv"

	"github.com/wasm2lua/wasm2lua/translate/analyze"
	"github.com/wasm2lua/wasm2lua/translate/ast"
)

// ExprContext carries the pieces of expression emission that differ by
// dialect: the register/local spill cap and the 64-bit integer literal
// formatter (spec.md §4.5: "i64 emitted with the LJ `LL` suffix ... or via
// `i64_ZERO`/`i64_ONE`/`i64_from_u32(lo,hi)` in LU").
type ExprContext struct {
	RegCap    int
	FormatI64 func(int64) string
	Dialect   analyze.Dialect
}

func (c *ExprContext) tempName(i int) string    { return TempName(i, c.RegCap) }
func (c *ExprContext) localName(i uint32) string { return LocalName(i, c.RegCap) }

// EmitExpr renders e as a Lua expression. boolCtx is true when e sits
// directly in a condition position (if/br_if/select) - the one place a
// CmpOp's wrapping to Wasm's 0/1 integer convention is peeled back to a
// raw Lua boolean (spec.md §4.5).
func EmitExpr(e ast.Expr, ctx *ExprContext, boolCtx bool) string {
	switch n := e.(type) {
	case ast.GetTemporary:
		return ctx.tempName(n.Index)
	case ast.GetLocal:
		return ctx.localName(n.Index)
	case ast.GetGlobal:
		return fmt.Sprintf("GLOBAL_LIST[%d].value", n.Index)
	case ast.LoadAt:
		ptr := EmitExpr(n.Pointer, ctx, false)
		if n.Offset != 0 {
			ptr = fmt.Sprintf("%s + %d", ptr, n.Offset)
		}
		return fmt.Sprintf("%s(memory_at_%d, %s)", n.Type.Tag().Symbol(), n.Memory, ptr)
	case ast.MemorySize:
		return fmt.Sprintf("memory_at_%d.min", n.Memory)
	case ast.ValueI32:
		return strconv.FormatInt(int64(n.Value), 10)
	case ast.ValueI64:
		return ctx.FormatI64(n.Value)
	case ast.ValueF32:
		return FormatFloat(float64(n.Value), 32)
	case ast.ValueF64:
		return FormatFloat(n.Value, 64)
	case ast.UnOp:
		return fmt.Sprintf("%s(%s)", n.Op.Tag().Symbol(), EmitExpr(n.Rhs, ctx, false))
	case ast.BinOp:
		lhs := EmitExpr(n.Lhs, ctx, false)
		rhs := EmitExpr(n.Rhs, ctx, false)
		if sym, ok := analyze.InlineSymbol(n.Op, ctx.Dialect); ok {
			return fmt.Sprintf("(%s %s %s)", lhs, sym, rhs)
		}
		return fmt.Sprintf("%s(%s, %s)", n.Op.Tag().Symbol(), lhs, rhs)
	case ast.CmpOp:
		boolExpr := cmpBoolExpr(n, ctx)
		if boolCtx {
			return boolExpr
		}
		return fmt.Sprintf("(%s and 1 or 0)", boolExpr)
	case ast.Select:
		cond := Truthy(n.Cond, ctx)
		onTrue := EmitExpr(n.OnTrue, ctx, false)
		onFalse := EmitExpr(n.OnFalse, ctx, false)
		return fmt.Sprintf("(function() if %s then return %s else return %s end end)()", cond, onTrue, onFalse)
	default:
		return ""
	}
}

func cmpBoolExpr(n ast.CmpOp, ctx *ExprContext) string {
	lhs := EmitExpr(n.Lhs, ctx, false)
	rhs := EmitExpr(n.Rhs, ctx, false)
	if sym, ok := analyze.InlineSymbol(n.Op, ctx.Dialect); ok {
		return fmt.Sprintf("(%s %s %s)", lhs, sym, rhs)
	}
	return fmt.Sprintf("%s(%s, %s)", n.Op.Tag().Symbol(), lhs, rhs)
}

// Truthy renders e as a raw Lua boolean expression, for the condition
// position of if/br_if/select. A CmpOp peels its 0/1 wrapper; anything
// else (an i32 value of any other shape) compares against zero the way
// Wasm's own control operators treat their condition operand.
func Truthy(e ast.Expr, ctx *ExprContext) string {
	if cmp, ok := e.(ast.CmpOp); ok {
		return cmpBoolExpr(cmp, ctx)
	}
	return fmt.Sprintf("(%s ~= 0)", EmitExpr(e, ctx, false))
}
