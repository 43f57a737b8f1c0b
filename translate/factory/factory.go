package factory

import (
	"github.com/wasm2lua/wasm2lua/errors"
	"github.com/wasm2lua/wasm2lua/translate/ast"
	"github.com/wasm2lua/wasm2lua/translate/oracle"
	"github.com/wasm2lua/wasm2lua/translate/opcode"
	"github.com/wasm2lua/wasm2lua/translate/stack"
	"github.com/wasm2lua/wasm2lua/wasm"
)

// Factory turns one function's flat operator list into a structured
// ast.Block (spec.md §4.4). A Factory is used once per function body.
type Factory struct {
	oracle *oracle.Oracle
	alloc  *stack.Allocator
	frames []*frame

	funcBlock *ast.Block

	skipping  bool
	skipDepth int
}

// New builds a Factory over o, the module's type/arity oracle.
func New(o *oracle.Oracle) *Factory {
	return &Factory{oracle: o}
}

// Build translates instrs, a decoded function body (numParam/numResult from
// its signature), into a structured root Block plus the peak temporary
// index any block in the function ever reserved (ast.FuncData.NumStack).
func (fa *Factory) Build(numParam, numResult int, instrs []wasm.Instruction) (*ast.Block, int, error) {
	fa.alloc = &stack.Allocator{}
	fa.frames = []*frame{{
		kind:        ctrlFunc,
		stk:         stack.New(fa.alloc),
		block:       &ast.Block{},
		paramCount:  numParam,
		resultCount: numResult,
	}}
	fa.funcBlock = nil
	fa.skipping = false
	fa.skipDepth = 0

	for _, instr := range instrs {
		if fa.skipping {
			if err := fa.stepSkipping(instr); err != nil {
				return nil, 0, err
			}
			continue
		}
		if err := fa.step(instr); err != nil {
			return nil, 0, err
		}
	}

	if fa.funcBlock == nil {
		Logger().Sugar().Debugw("malformed function body", "instruction_count", len(instrs))
		return nil, 0, errors.New(errors.PhaseTranslate, errors.KindInvalidData).
			Detail("function body never reached its closing end").Build()
	}
	return fa.funcBlock, fa.alloc.Peak(), nil
}

// stepSkipping advances nested-unreachable mode: it tracks opened/closed
// block nesting so the matching End/Else is recognized, discarding
// everything else (spec.md §4.4).
func (fa *Factory) stepSkipping(instr wasm.Instruction) error {
	switch instr.Opcode {
	case wasm.OpBlock, wasm.OpLoop, wasm.OpIf:
		fa.skipDepth++
	case wasm.OpElse:
		if fa.skipDepth == 0 {
			fa.skipping = false
			fa.handleElse()
		}
	case wasm.OpEnd:
		if fa.skipDepth == 0 {
			fa.skipping = false
			fa.handleEnd()
		} else {
			fa.skipDepth--
		}
	}
	return nil
}

// step dispatches one reachable operator.
func (fa *Factory) step(instr wasm.Instruction) error {
	switch instr.Opcode {
	case wasm.OpNop:
		return nil
	case wasm.OpUnreachable:
		fa.handleUnreachable()
		return nil
	case wasm.OpBlock:
		imm := instr.Imm.(wasm.BlockImm)
		return fa.startBlock(ctrlBlock, imm.Type, nil)
	case wasm.OpLoop:
		imm := instr.Imm.(wasm.BlockImm)
		return fa.startBlock(ctrlLoop, imm.Type, nil)
	case wasm.OpIf:
		imm := instr.Imm.(wasm.BlockImm)
		cond, err := fa.top().stk.Pop()
		if err != nil {
			return err
		}
		return fa.startBlock(ctrlIf, imm.Type, cond)
	case wasm.OpElse:
		fa.handleElse()
		return nil
	case wasm.OpEnd:
		fa.handleEnd()
		return nil
	case wasm.OpBr:
		fa.handleBr(instr.Imm.(wasm.BranchImm).LabelIdx)
		return nil
	case wasm.OpBrIf:
		return fa.handleBrIf(instr.Imm.(wasm.BranchImm).LabelIdx)
	case wasm.OpBrTable:
		imm := instr.Imm.(wasm.BrTableImm)
		return fa.handleBrTable(imm.Labels, imm.Default)
	case wasm.OpReturn:
		fa.handleReturn()
		return nil
	case wasm.OpCall:
		return fa.opCall(instr.Imm.(wasm.CallImm).FuncIdx)
	case wasm.OpCallIndirect:
		imm := instr.Imm.(wasm.CallIndirectImm)
		return fa.opCallIndirect(imm.TypeIdx, imm.TableIdx)
	case wasm.OpDrop:
		return fa.opDrop()
	case wasm.OpSelect, wasm.OpSelectType:
		return fa.opSelect()
	case wasm.OpLocalGet:
		fa.opLocalGet(instr.Imm.(wasm.LocalImm).LocalIdx)
		return nil
	case wasm.OpLocalSet:
		return fa.opLocalSet(instr.Imm.(wasm.LocalImm).LocalIdx)
	case wasm.OpLocalTee:
		return fa.opLocalTee(instr.Imm.(wasm.LocalImm).LocalIdx)
	case wasm.OpGlobalGet:
		fa.opGlobalGet(instr.Imm.(wasm.GlobalImm).GlobalIdx)
		return nil
	case wasm.OpGlobalSet:
		return fa.opGlobalSet(instr.Imm.(wasm.GlobalImm).GlobalIdx)
	case wasm.OpMemorySize:
		fa.opMemorySize(instr.Imm.(wasm.MemoryIdxImm).MemIdx)
		return nil
	case wasm.OpMemoryGrow:
		return fa.opMemoryGrow(instr.Imm.(wasm.MemoryIdxImm).MemIdx)
	case wasm.OpI32Const:
		fa.top().stk.Push(ast.ValueI32{Value: instr.Imm.(wasm.I32Imm).Value})
		return nil
	case wasm.OpI64Const:
		fa.top().stk.Push(ast.ValueI64{Value: instr.Imm.(wasm.I64Imm).Value})
		return nil
	case wasm.OpF32Const:
		fa.top().stk.Push(ast.ValueF32{Value: instr.Imm.(wasm.F32Imm).Value})
		return nil
	case wasm.OpF64Const:
		fa.top().stk.Push(ast.ValueF64{Value: instr.Imm.(wasm.F64Imm).Value})
		return nil
	case wasm.OpI32Eqz:
		return fa.opEqz(false)
	case wasm.OpI64Eqz:
		return fa.opEqz(true)
	}

	if lt, imm, ok := opcode.TryAsLoad(instr); ok {
		return fa.opLoad(lt, imm)
	}
	if st, imm, ok := opcode.TryAsStore(instr); ok {
		return fa.opStore(st, imm)
	}
	if c, ok := opcode.TryAsCmpOp(instr); ok {
		return fa.opCmpOp(c)
	}
	if b, ok := opcode.TryAsBinOp(instr); ok {
		return fa.opBinOp(b)
	}
	if u, ok := opcode.TryAsUnOp(instr); ok {
		return fa.opUnOp(u)
	}

	Logger().Sugar().Debugw("unsupported operator", "opcode", instr.Opcode)
	return errors.New(errors.PhaseTranslate, errors.KindUnsupported).
		Detail("unsupported operator 0x%02x", instr.Opcode).Build()
}
