package factory

import (
	"testing"

	"github.com/wasm2lua/wasm2lua/translate/ast"
	"github.com/wasm2lua/wasm2lua/translate/oracle"
	"github.com/wasm2lua/wasm2lua/wasm"
)

func testOracle(t *testing.T) *oracle.Oracle {
	t.Helper()
	m := &wasm.Module{
		Types: []wasm.FuncType{
			{Params: nil, Results: []wasm.ValType{wasm.ValI32}},
		},
	}
	return oracle.New(m, nil)
}

func TestBuildSimpleAdd(t *testing.T) {
	fa := New(testOracle(t))
	instrs := []wasm.Instruction{
		{Opcode: wasm.OpLocalGet, Imm: wasm.LocalImm{LocalIdx: 0}},
		{Opcode: wasm.OpLocalGet, Imm: wasm.LocalImm{LocalIdx: 1}},
		{Opcode: wasm.OpI32Add},
		{Opcode: wasm.OpEnd},
	}
	block, numStack, err := fa.Build(2, 1, instrs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if numStack != 1 {
		t.Fatalf("numStack = %d, want 1", numStack)
	}
	if len(block.Code) != 1 {
		t.Fatalf("got %d statements, want 1", len(block.Code))
	}
	st, ok := block.Code[0].(ast.SetTemporary)
	if !ok || st.Index != 0 {
		t.Fatalf("unexpected statement: %#v", block.Code[0])
	}
	add, ok := st.Value.(ast.BinOp)
	if !ok || add.Op.Tag().Symbol() != "add_i32" {
		t.Fatalf("unexpected value: %#v", st.Value)
	}
}

func TestBuildIfElse(t *testing.T) {
	fa := New(testOracle(t))
	instrs := []wasm.Instruction{
		{Opcode: wasm.OpLocalGet, Imm: wasm.LocalImm{LocalIdx: 0}},
		{Opcode: wasm.OpIf, Imm: wasm.BlockImm{Type: wasm.BlockTypeI32}},
		{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: 1}},
		{Opcode: wasm.OpElse},
		{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: 2}},
		{Opcode: wasm.OpEnd},
		{Opcode: wasm.OpEnd},
	}
	block, _, err := fa.Build(1, 1, instrs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(block.Code) != 1 {
		t.Fatalf("got %d statements, want 1", len(block.Code))
	}
	ifStmt, ok := block.Code[0].(ast.If)
	if !ok {
		t.Fatalf("unexpected statement: %#v", block.Code[0])
	}
	if _, ok := ifStmt.Cond.(ast.GetLocal); !ok {
		t.Fatalf("unexpected condition: %#v", ifStmt.Cond)
	}
	if ifStmt.Else == nil {
		t.Fatal("expected an else arm")
	}
	thenSet := ifStmt.Then.Code[0].(ast.SetTemporary)
	elseSet := ifStmt.Else.Code[0].(ast.SetTemporary)
	if thenSet.Index != elseSet.Index {
		t.Fatalf("then/else temporary indices diverge: %d vs %d", thenSet.Index, elseSet.Index)
	}
	if thenSet.Value.(ast.ValueI32).Value != 1 || elseSet.Value.(ast.ValueI32).Value != 2 {
		t.Fatalf("unexpected arm values: then=%#v else=%#v", thenSet.Value, elseSet.Value)
	}
}

func TestBuildLoopBranchIsSelfTarget(t *testing.T) {
	fa := New(testOracle(t))
	instrs := []wasm.Instruction{
		{Opcode: wasm.OpLoop, Imm: wasm.BlockImm{Type: wasm.BlockTypeVoid}},
		{Opcode: wasm.OpNop},
		{Opcode: wasm.OpBr, Imm: wasm.BranchImm{LabelIdx: 0}},
		{Opcode: wasm.OpEnd},
		{Opcode: wasm.OpEnd},
	}
	block, _, err := fa.Build(0, 0, instrs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(block.Code) != 1 {
		t.Fatalf("got %d statements, want 1", len(block.Code))
	}
	loopBlock, ok := block.Code[0].(*ast.Block)
	if !ok {
		t.Fatalf("unexpected statement: %#v", block.Code[0])
	}
	if loopBlock.Label != ast.LabelBackward {
		t.Fatalf("label = %v, want LabelBackward", loopBlock.Label)
	}
	br, ok := loopBlock.Terminator.(ast.Br)
	if !ok {
		t.Fatalf("unexpected terminator: %#v", loopBlock.Terminator)
	}
	if br.Target != loopBlock {
		t.Fatal("loop's own br should target itself by pointer identity")
	}
}

func TestBuildUnreachableDiscardsTrailingOps(t *testing.T) {
	fa := New(testOracle(t))
	instrs := []wasm.Instruction{
		{Opcode: wasm.OpUnreachable},
		{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: 99}},
		{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: 99}},
		{Opcode: wasm.OpI32Add},
		{Opcode: wasm.OpEnd},
	}
	block, _, err := fa.Build(0, 1, instrs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(block.Code) != 0 {
		t.Fatalf("got %d statements, want 0 (all discarded as unreachable)", len(block.Code))
	}
	if _, ok := block.Terminator.(ast.Unreachable); !ok {
		t.Fatalf("unexpected terminator: %#v", block.Terminator)
	}
}
