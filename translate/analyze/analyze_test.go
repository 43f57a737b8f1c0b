package analyze

import (
	"testing"

	"github.com/wasm2lua/wasm2lua/translate/ast"
	"github.com/wasm2lua/wasm2lua/translate/opcode"
)

func TestScanMemoryCollectsEveryTouchedIndex(t *testing.T) {
	block := &ast.Block{
		Code: []ast.Stat{
			ast.StoreAt{Pointer: ast.ValueI32{Value: 0}, Value: ast.ValueI32{Value: 1}, Type: opcode.StoreI32, Memory: 2},
			ast.SetTemporary{Index: 0, Value: ast.LoadAt{Pointer: ast.ValueI32{Value: 0}, Type: opcode.LoadI32, Memory: 0}},
			ast.SetTemporary{Index: 1, Value: ast.MemorySize{Memory: 1}},
		},
	}

	mems := ScanMemory(block)
	got := mems.Sorted()
	want := []uint32{0, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestScanHelpersDialectDifference(t *testing.T) {
	block := &ast.Block{
		Code: []ast.Stat{
			ast.SetTemporary{Index: 0, Value: ast.BinOp{Lhs: ast.ValueI64{Value: 1}, Rhs: ast.ValueI64{Value: 2}, Op: opcode.BinAddI64}},
		},
	}

	ljHelpers := ScanHelpers(block, DialectLuaJIT)
	if len(ljHelpers) != 0 {
		t.Fatalf("luajit: got helpers %v, want none (i64 add is inline)", ljHelpers.Sorted())
	}

	luHelpers := ScanHelpers(block, DialectLuau)
	if _, ok := luHelpers["add_i64"]; !ok {
		t.Fatalf("luau: got helpers %v, want add_i64 (no native int64 add)", luHelpers.Sorted())
	}
}

func TestScanHelpersAlwaysLocalizesLoadsAndUnOps(t *testing.T) {
	block := &ast.Block{
		Code: []ast.Stat{
			ast.SetTemporary{Index: 0, Value: ast.UnOp{Rhs: ast.ValueI32{Value: 1}, Op: opcode.UnClzI32}},
			ast.SetTemporary{Index: 1, Value: ast.LoadAt{Pointer: ast.ValueI32{Value: 0}, Type: opcode.LoadI64I8, Memory: 0}},
		},
	}

	helpers := ScanHelpers(block, DialectLuaJIT)
	for _, want := range []string{"clz_i32", "load_i64_i8"} {
		if _, ok := helpers[want]; !ok {
			t.Fatalf("got helpers %v, want %q", helpers.Sorted(), want)
		}
	}
}

func TestInlineSymbolRejectsUnsignedComparisons(t *testing.T) {
	if _, ok := InlineSymbol(opcode.CmpLtI32U, DialectLuaJIT); ok {
		t.Fatalf("unsigned comparison must never be inline")
	}
	if sym, ok := InlineSymbol(opcode.CmpLtI32S, DialectLuaJIT); !ok || sym != "<" {
		t.Fatalf("got (%q, %v), want (\"<\", true)", sym, ok)
	}
}

func TestCompactBrTableMergesConsecutiveRuns(t *testing.T) {
	a := &ast.Block{Label: ast.LabelForward}
	b := &ast.Block{Label: ast.LabelForward}

	bt := ast.BrTable{
		Index: ast.GetLocal{Index: 0},
		Targets: []ast.Br{
			{Target: a}, {Target: a}, {Target: b}, {Target: b}, {Target: b},
		},
		Default: ast.Br{Target: a},
	}

	runs := CompactBrTable(bt)
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].Start != 0 || runs[0].End != 1 || runs[0].Target.Target != a {
		t.Fatalf("first run wrong: %+v", runs[0])
	}
	if runs[1].Start != 2 || runs[1].End != 4 || runs[1].Target.Target != b {
		t.Fatalf("second run wrong: %+v", runs[1])
	}
}

func TestCompactBrTableSeparatesDifferentAlign(t *testing.T) {
	a := &ast.Block{Label: ast.LabelForward}

	bt := ast.BrTable{
		Index: ast.GetLocal{Index: 0},
		Targets: []ast.Br{
			{Target: a, Align: ast.Align{New: 0, Old: 0, Length: 1}},
			{Target: a, Align: ast.Align{New: 0, Old: 2, Length: 1}},
		},
		Default: ast.Br{Target: a},
	}

	runs := CompactBrTable(bt)
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2 (differing Align must not merge)", len(runs))
	}
}
