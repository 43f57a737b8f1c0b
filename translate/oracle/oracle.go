// Package oracle resolves Wasm function and block types to their
// (num_param, num_result) arity, per spec.md §4.2. It is constructed once
// per module and is immutable thereafter (spec.md §3.4).
package oracle

import (
	"github.com/wasm2lua/wasm2lua/errors"
	"github.com/wasm2lua/wasm2lua/wasm"
)

// Oracle answers arity questions about a module's type space. It combines
// the module's type section with the ordered import+defined function index
// space, generalizing wasm.Module.GetFuncType with the block-type lookup
// form spec.md §4.2 additionally requires.
type Oracle struct {
	module  *wasm.Module
	funcs   []uint32 // type index per function, imports first
}

// New builds an Oracle over module. funcs is the combined import+defined
// function space's type indices, in export-index order (imports first).
func New(module *wasm.Module, funcs []uint32) *Oracle {
	return &Oracle{module: module, funcs: funcs}
}

// NewFromModule builds an Oracle directly from a decoded module, deriving
// the combined function index space from its imports and its Funcs section.
func NewFromModule(module *wasm.Module) *Oracle {
	funcs := make([]uint32, 0, module.NumImportedFuncs()+len(module.Funcs))
	for _, imp := range module.Imports {
		if imp.Desc.Kind == wasm.KindFunc {
			funcs = append(funcs, imp.Desc.TypeIdx)
		}
	}
	funcs = append(funcs, module.Funcs...)
	return New(module, funcs)
}

// ByTypeIndex resolves a type-section index directly.
func (o *Oracle) ByTypeIndex(i uint32) (numParam, numResult int, err error) {
	if int(i) >= len(o.module.Types) {
		return 0, 0, errors.New(errors.PhaseTranslate, errors.KindNotFound).
			Detail("type index %d out of range (have %d types)", i, len(o.module.Types)).
			Build()
	}
	ft := &o.module.Types[i]
	return len(ft.Params), len(ft.Results), nil
}

// ByFuncIndex resolves a function index (import space first, then defined
// functions) to its signature's arity.
func (o *Oracle) ByFuncIndex(i uint32) (numParam, numResult int, err error) {
	if int(i) >= len(o.funcs) {
		return 0, 0, errors.New(errors.PhaseTranslate, errors.KindNotFound).
			Detail("function index %d out of range (have %d functions)", i, len(o.funcs)).
			Build()
	}
	return o.ByTypeIndex(o.funcs[i])
}

// ByBlockType resolves a Wasm block type (spec.md §4.2): void -> (0,0), a
// single value type -> (0,1), or a type-section index -> ByTypeIndex(i).
func (o *Oracle) ByBlockType(blockType int32) (numParam, numResult int, err error) {
	switch blockType {
	case wasm.BlockTypeVoid:
		return 0, 0, nil
	case wasm.BlockTypeI32, wasm.BlockTypeI64, wasm.BlockTypeF32, wasm.BlockTypeF64, wasm.BlockTypeV128:
		return 0, 1, nil
	default:
		if blockType < 0 {
			// Reference-type shorthand block results (funcref/externref etc).
			return 0, 1, nil
		}
		return o.ByTypeIndex(uint32(blockType))
	}
}

// FuncTypeIndex returns the type-section index for function i, for callers
// (e.g. CallIndirect validation) that need the raw index rather than arity.
func (o *Oracle) FuncTypeIndex(i uint32) (uint32, error) {
	if int(i) >= len(o.funcs) {
		return 0, errors.New(errors.PhaseTranslate, errors.KindNotFound).
			Detail("function index %d out of range (have %d functions)", i, len(o.funcs)).
			Build()
	}
	return o.funcs[i], nil
}

// NumImportedFuncs returns the number of functions in the import space,
// i.e. the offset at which defined functions begin in the export index.
func (o *Oracle) NumImportedFuncs() int {
	return o.module.NumImportedFuncs()
}
