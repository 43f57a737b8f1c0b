package wasm2lua

import (
	"io"

	"github.com/wasm2lua/wasm2lua/assemble"
	"github.com/wasm2lua/wasm2lua/translate/ast"
	"github.com/wasm2lua/wasm2lua/translate/factory"
	"github.com/wasm2lua/wasm2lua/translate/oracle"
	"github.com/wasm2lua/wasm2lua/wasm"
)

// Translate renders module as a complete Lua module and writes it to out.
// Decode errors from a malformed function body propagate unchanged, as the
// wasm decoder reports them; unsupported-operator and
// malformed-control-flow errors surface from translate/factory with
// Phase: PhaseTranslate. Writes to out propagate verbatim.
func Translate(module *wasm.Module, out io.Writer, cfg Config) error {
	o := oracle.NewFromModule(module)

	funcs := make([]*ast.FuncData, len(module.Code))
	base := module.NumImportedFuncs()
	for i, body := range module.Code {
		fn, err := buildFunc(o, base+i, body)
		if err != nil {
			return err
		}
		funcs[i] = fn
	}

	text, err := assemble.Assemble(module, o, cfg.Dialect.manager(), funcs)
	if err != nil {
		return err
	}

	_, err = io.WriteString(out, text)
	return err
}

// buildFunc decodes one code-section entry and runs the Factory over it,
// resolving its arity through the oracle at the combined (import+defined)
// function index funcIdx.
func buildFunc(o *oracle.Oracle, funcIdx int, body wasm.FuncBody) (*ast.FuncData, error) {
	numParam, numResult, err := o.ByFuncIndex(uint32(funcIdx))
	if err != nil {
		return nil, err
	}

	instrs, err := wasm.DecodeInstructions(body.Code)
	if err != nil {
		return nil, err
	}

	fa := factory.New(o)
	code, numStack, err := fa.Build(numParam, numResult, instrs)
	if err != nil {
		return nil, err
	}

	return &ast.FuncData{
		Code:      code,
		Locals:    localSlots(body.Locals),
		NumParam:  numParam,
		NumResult: numResult,
		NumStack:  numStack,
	}, nil
}

func localSlots(entries []wasm.LocalEntry) []ast.LocalSlot {
	slots := make([]ast.LocalSlot, len(entries))
	for i, e := range entries {
		slots[i] = ast.LocalSlot{Count: e.Count, ValType: e.ValType}
	}
	return slots
}
