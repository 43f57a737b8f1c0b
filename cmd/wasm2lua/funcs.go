package main

import (
	"fmt"
	"strings"

	"github.com/wasm2lua/wasm2lua/wasm"
)

// funcInfo describes one exported function for the -list and -i views.
type funcInfo struct {
	name    string
	index   uint32
	params  []wasm.ValType
	results []wasm.ValType
}

func (f funcInfo) signature() string {
	params := make([]string, len(f.params))
	for i, p := range f.params {
		params[i] = p.String()
	}
	results := make([]string, len(f.results))
	for i, r := range f.results {
		results[i] = r.String()
	}
	sig := fmt.Sprintf("%s(%s)", f.name, strings.Join(params, ", "))
	if len(results) > 0 {
		sig += " -> " + strings.Join(results, ", ")
	}
	return sig
}

// describeExports lists every function export with its resolved signature,
// in export order.
func describeExports(module *wasm.Module) []funcInfo {
	var out []funcInfo
	for _, exp := range module.Exports {
		if exp.Kind != wasm.KindFunc {
			continue
		}
		ft, ok := funcTypeOf(module, exp.Idx)
		if !ok {
			continue
		}
		out = append(out, funcInfo{
			name:    exp.Name,
			index:   exp.Idx,
			params:  ft.Params,
			results: ft.Results,
		})
	}
	return out
}

// funcTypeOf resolves the FuncType for function index i, whether imported
// or defined.
func funcTypeOf(module *wasm.Module, i uint32) (wasm.FuncType, bool) {
	numImported := uint32(module.NumImportedFuncs())
	var typeIdx uint32
	if i < numImported {
		n := uint32(0)
		for _, imp := range module.Imports {
			if imp.Desc.Kind != wasm.KindFunc {
				continue
			}
			if n == i {
				typeIdx = imp.Desc.TypeIdx
				break
			}
			n++
		}
	} else {
		defIdx := i - numImported
		if int(defIdx) >= len(module.Funcs) {
			return wasm.FuncType{}, false
		}
		typeIdx = module.Funcs[defIdx]
	}
	if int(typeIdx) >= len(module.Types) {
		return wasm.FuncType{}, false
	}
	return module.Types[typeIdx], true
}
