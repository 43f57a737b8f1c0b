package factory

import (
	"github.com/wasm2lua/wasm2lua/translate/ast"
	"github.com/wasm2lua/wasm2lua/translate/opcode"
	"github.com/wasm2lua/wasm2lua/translate/stack"
	"github.com/wasm2lua/wasm2lua/wasm"
)

func localEffect(i uint32) func(stack.Effect) bool {
	return func(e stack.Effect) bool { return e.Kind == stack.EffectLocal && e.Index == i }
}

func globalEffect(i uint32) func(stack.Effect) bool {
	return func(e stack.Effect) bool { return e.Kind == stack.EffectGlobal && e.Index == i }
}

func memoryEffect(m uint32) func(stack.Effect) bool {
	return func(e stack.Effect) bool { return e.Kind == stack.EffectMemory && e.Index == m }
}

func globalOrMemory(e stack.Effect) bool {
	return e.Kind == stack.EffectGlobal || e.Kind == stack.EffectMemory
}

// pushDerived pushes e with the union of its own inferred effect and every
// operand effect set it was built from, so later ordering decisions still
// see through to whatever state a nested operand reads.
func pushDerived(stk *stack.Stack, e ast.Expr, deps ...stack.EffectSet) {
	eff := stack.InferSingle(e)
	for _, d := range deps {
		eff = stack.Union(eff, d)
	}
	stk.PushWithRead(e, eff)
}

func (fa *Factory) opLocalGet(i uint32) {
	fa.top().stk.PushWithSingle(ast.GetLocal{Index: i})
}

func (fa *Factory) opLocalSet(i uint32) error {
	cur := fa.top()
	v, err := cur.stk.Pop()
	if err != nil {
		return err
	}
	cur.stk.LeakInto(&cur.code, localEffect(i))
	cur.code = append(cur.code, ast.SetLocal{Value: v, Index: i})
	return nil
}

func (fa *Factory) opLocalTee(i uint32) error {
	if err := fa.opLocalSet(i); err != nil {
		return err
	}
	fa.opLocalGet(i)
	return nil
}

func (fa *Factory) opGlobalGet(i uint32) {
	fa.top().stk.PushWithSingle(ast.GetGlobal{Index: i})
}

func (fa *Factory) opGlobalSet(i uint32) error {
	cur := fa.top()
	v, err := cur.stk.Pop()
	if err != nil {
		return err
	}
	cur.stk.LeakInto(&cur.code, globalEffect(i))
	cur.code = append(cur.code, ast.SetGlobal{Value: v, Index: i})
	return nil
}

func (fa *Factory) opLoad(lt opcode.LoadType, imm wasm.MemoryImm) error {
	cur := fa.top()
	ptr, ptrEff, err := cur.stk.PopWithRead()
	if err != nil {
		return err
	}
	e := ast.LoadAt{Pointer: ptr, Type: lt, Memory: imm.MemIdx, Offset: imm.Offset}
	pushDerived(cur.stk, e, ptrEff)
	return nil
}

func (fa *Factory) opStore(st opcode.StoreType, imm wasm.MemoryImm) error {
	cur := fa.top()
	value, err := cur.stk.Pop()
	if err != nil {
		return err
	}
	ptr, err := cur.stk.Pop()
	if err != nil {
		return err
	}
	cur.stk.LeakInto(&cur.code, memoryEffect(imm.MemIdx))
	cur.code = append(cur.code, ast.StoreAt{Pointer: ptr, Value: value, Type: st, Memory: imm.MemIdx, Offset: imm.Offset})
	return nil
}

func (fa *Factory) opMemorySize(memIdx uint32) {
	fa.top().stk.PushWithSingle(ast.MemorySize{Memory: memIdx})
}

func (fa *Factory) opMemoryGrow(memIdx uint32) error {
	cur := fa.top()
	delta, err := cur.stk.Pop()
	if err != nil {
		return err
	}
	cur.stk.LeakInto(&cur.code, memoryEffect(memIdx))
	result := cur.stk.PushTemporary(1)[0].(ast.GetTemporary).Index
	cur.code = append(cur.code, ast.MemoryGrow{Delta: delta, Memory: memIdx, Result: result})
	return nil
}

func (fa *Factory) opUnOp(u opcode.UnOpType) error {
	cur := fa.top()
	rhs, rhsEff, err := cur.stk.PopWithRead()
	if err != nil {
		return err
	}
	e := ast.UnOp{Rhs: rhs, Op: u}
	pushDerived(cur.stk, e, rhsEff)
	return nil
}

func (fa *Factory) opBinOp(b opcode.BinOpType) error {
	cur := fa.top()
	rhs, rhsEff, err := cur.stk.PopWithRead()
	if err != nil {
		return err
	}
	lhs, lhsEff, err := cur.stk.PopWithRead()
	if err != nil {
		return err
	}
	e := ast.BinOp{Lhs: lhs, Rhs: rhs, Op: b}
	pushDerived(cur.stk, e, lhsEff, rhsEff)
	return nil
}

func (fa *Factory) opCmpOp(c opcode.CmpOpType) error {
	cur := fa.top()
	rhs, rhsEff, err := cur.stk.PopWithRead()
	if err != nil {
		return err
	}
	lhs, lhsEff, err := cur.stk.PopWithRead()
	if err != nil {
		return err
	}
	e := ast.CmpOp{Lhs: lhs, Rhs: rhs, Op: c}
	pushDerived(cur.stk, e, lhsEff, rhsEff)
	return nil
}

// opEqz lowers i32.eqz/i64.eqz to a comparison against a zero literal
// (spec.md §4.4: "eqz is lowered to a CmpOp(Eq) against a zero constant").
func (fa *Factory) opEqz(is64 bool) error {
	cur := fa.top()
	lhs, lhsEff, err := cur.stk.PopWithRead()
	if err != nil {
		return err
	}
	var zero ast.Expr
	var cmp opcode.CmpOpType
	if is64 {
		zero, cmp = ast.ValueI64{Value: 0}, opcode.CmpEqI64
	} else {
		zero, cmp = ast.ValueI32{Value: 0}, opcode.CmpEqI32
	}
	e := ast.CmpOp{Lhs: lhs, Rhs: zero, Op: cmp}
	pushDerived(cur.stk, e, lhsEff)
	return nil
}

func (fa *Factory) opSelect() error {
	cur := fa.top()
	cond, condEff, err := cur.stk.PopWithRead()
	if err != nil {
		return err
	}
	onFalse, falseEff, err := cur.stk.PopWithRead()
	if err != nil {
		return err
	}
	onTrue, trueEff, err := cur.stk.PopWithRead()
	if err != nil {
		return err
	}
	e := ast.Select{Cond: cond, OnTrue: onTrue, OnFalse: onFalse}
	pushDerived(cur.stk, e, condEff, trueEff, falseEff)
	return nil
}

func (fa *Factory) opDrop() error {
	_, err := fa.top().stk.Pop()
	return err
}

func (fa *Factory) opCall(funcIdx uint32) error {
	cur := fa.top()
	numParam, numResult, err := fa.oracle.ByFuncIndex(funcIdx)
	if err != nil {
		return err
	}
	args, err := cur.stk.PopLen(numParam)
	if err != nil {
		return err
	}
	cur.stk.LeakInto(&cur.code, globalOrMemory)
	results := cur.stk.PushTemporary(numResult)
	cur.code = append(cur.code, ast.Call{
		Args:   args,
		Func:   funcIdx,
		Result: resultRange(results),
	})
	return nil
}

func (fa *Factory) opCallIndirect(typeIdx, tableIdx uint32) error {
	cur := fa.top()
	numParam, numResult, err := fa.oracle.ByTypeIndex(typeIdx)
	if err != nil {
		return err
	}
	index, err := cur.stk.Pop()
	if err != nil {
		return err
	}
	args, err := cur.stk.PopLen(numParam)
	if err != nil {
		return err
	}
	cur.stk.LeakInto(&cur.code, globalOrMemory)
	results := cur.stk.PushTemporary(numResult)
	cur.code = append(cur.code, ast.CallIndirect{
		Index:  index,
		Args:   args,
		Type:   typeIdx,
		Table:  tableIdx,
		Result: resultRange(results),
	})
	return nil
}

func resultRange(results []ast.Expr) ast.Range {
	if len(results) == 0 {
		return ast.Range{}
	}
	start := results[0].(ast.GetTemporary).Index
	return ast.Range{Start: start, End: start + len(results)}
}
