package backend

import (
	"fmt"
	"strings"

	"github.com/wasm2lua/wasm2lua/translate/ast"
	"github.com/wasm2lua/wasm2lua/wasm"
)

// ZeroValue renders the zero-initial value a declared (non-parameter) Wasm
// local of type vt starts at (spec.md §3.2's FuncData.local_data).
func ZeroValue(vt wasm.ValType, ctx *ExprContext) string {
	switch vt {
	case wasm.ValI64:
		return ctx.FormatI64(0)
	case wasm.ValF32:
		return FormatFloat(0, 32)
	case wasm.ValF64:
		return FormatFloat(0, 64)
	default:
		return "0"
	}
}

// DeclarePrelude renders the lines a function body needs before its first
// statement: a zero-initialized `local` for every declared local past the
// parameter list, and an uninitialized `local` for every temporary register
// the function body references - without these, SetTemporary/SetLocal's
// bare `name = value` assignments would create Lua globals instead of
// writing function-local state. Grounded on
// original_source/src/backend/translator/level_2.rs's gen_prelude, with
// the original's single param_/var_/reg_ numbering split across
// LocalName/TempName's own two namespaces and plain/spill naming instead.
func DeclarePrelude(fn *ast.FuncData, ctx *ExprContext) []string {
	var lines []string

	names, zeros, spillNames, spillZeros := splitLocals(fn, ctx)
	if len(names) > 0 {
		lines = append(lines, fmt.Sprintf("local %s = %s", strings.Join(names, ", "), strings.Join(zeros, ", ")))
	}
	if len(spillNames) > 0 {
		lines = append(lines, "local loc_spill = {}")
		for i, name := range spillNames {
			lines = append(lines, fmt.Sprintf("%s = %s", name, spillZeros[i]))
		}
	}

	plainTemps, spillTemps := splitTemps(fn, ctx)
	if len(plainTemps) > 0 {
		lines = append(lines, fmt.Sprintf("local %s", strings.Join(plainTemps, ", ")))
	}
	if spillTemps {
		lines = append(lines, "local reg_spill = {}")
	}

	return lines
}

// splitLocals walks fn's declared locals (the Wasm local indices past
// NumParam) in order, separating the ones LocalName keeps as plain locals
// from the ones it spills into loc_spill.
func splitLocals(fn *ast.FuncData, ctx *ExprContext) (names, zeros, spillNames, spillZeros []string) {
	idx := uint32(fn.NumParam)
	for _, slot := range fn.Locals {
		for i := uint32(0); i < slot.Count; i++ {
			zero := ZeroValue(slot.ValType, ctx)
			name := LocalName(idx, ctx.RegCap)
			if strings.HasPrefix(name, "loc_spill") {
				spillNames = append(spillNames, name)
				spillZeros = append(spillZeros, zero)
			} else {
				names = append(names, name)
				zeros = append(zeros, zero)
			}
			idx++
		}
	}
	return
}

// splitTemps reports the plain reg_i names to declare for fn's peak
// temporary pressure, and whether any index past the register cap needs
// reg_spill.
func splitTemps(fn *ast.FuncData, ctx *ExprContext) (plain []string, spillNeeded bool) {
	limit := fn.NumStack
	if ctx.RegCap > NoSpillCap && limit > ctx.RegCap {
		limit = ctx.RegCap
		spillNeeded = true
	}
	plain = make([]string, limit)
	for i := 0; i < limit; i++ {
		plain[i] = TempName(i, ctx.RegCap)
	}
	return
}
