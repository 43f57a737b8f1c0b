package visit

import "github.com/wasm2lua/wasm2lua/translate/ast"

// Visitor holds the optional inspector callbacks Walk invokes in pre-order
// as it descends a function's AST. A nil field is simply skipped.
type Visitor struct {
	Block func(*ast.Block)
	Stat  func(ast.Stat)
	Expr  func(ast.Expr)
}

// Walk traverses b's statements, nested blocks, and every expression
// reachable from them, calling v's callbacks. Branch targets (Br.Target,
// BrTable.Targets/Default) are pointers into the tree, not tree edges, and
// are never followed here — otherwise a backward branch into an enclosing
// loop would recurse forever.
func Walk(b *ast.Block, v *Visitor) {
	if b == nil {
		return
	}
	if v.Block != nil {
		v.Block(b)
	}
	for _, stat := range b.Code {
		walkStat(stat, v)
	}
	walkTerminator(b.Terminator, v)
}

func walkStat(s ast.Stat, v *Visitor) {
	if v.Stat != nil {
		v.Stat(s)
	}
	switch n := s.(type) {
	case *ast.Block:
		Walk(n, v)
	case ast.If:
		walkExpr(n.Cond, v)
		Walk(n.Then, v)
		if n.Else != nil {
			Walk(n.Else, v)
		}
	case ast.BrIf:
		walkExpr(n.Cond, v)
	case ast.Call:
		for _, a := range n.Args {
			walkExpr(a, v)
		}
	case ast.CallIndirect:
		walkExpr(n.Index, v)
		for _, a := range n.Args {
			walkExpr(a, v)
		}
	case ast.SetTemporary:
		walkExpr(n.Value, v)
	case ast.SetLocal:
		walkExpr(n.Value, v)
	case ast.SetGlobal:
		walkExpr(n.Value, v)
	case ast.StoreAt:
		walkExpr(n.Pointer, v)
		walkExpr(n.Value, v)
	case ast.MemoryGrow:
		walkExpr(n.Delta, v)
	}
}

func walkTerminator(t ast.Terminator, v *Visitor) {
	if bt, ok := t.(ast.BrTable); ok {
		walkExpr(bt.Index, v)
	}
}

func walkExpr(e ast.Expr, v *Visitor) {
	if e == nil {
		return
	}
	if v.Expr != nil {
		v.Expr(e)
	}
	switch n := e.(type) {
	case ast.Select:
		walkExpr(n.Cond, v)
		walkExpr(n.OnTrue, v)
		walkExpr(n.OnFalse, v)
	case ast.LoadAt:
		walkExpr(n.Pointer, v)
	case ast.UnOp:
		walkExpr(n.Rhs, v)
	case ast.BinOp:
		walkExpr(n.Lhs, v)
		walkExpr(n.Rhs, v)
	case ast.CmpOp:
		walkExpr(n.Lhs, v)
		walkExpr(n.Rhs, v)
	}
}
