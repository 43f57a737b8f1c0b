package assemble

import (
	"github.com/wasm2lua/wasm2lua/backend"
	"github.com/wasm2lua/wasm2lua/errors"
	"github.com/wasm2lua/wasm2lua/translate/ast"
	"github.com/wasm2lua/wasm2lua/translate/factory"
	"github.com/wasm2lua/wasm2lua/translate/oracle"
	"github.com/wasm2lua/wasm2lua/wasm"
)

// evalInit renders a global/element/data offset init expression as a Lua
// expression string (spec.md §4.7 point 5): it runs the single-result
// Factory over the expression's own instruction stream, the same way a
// function body would be built, then reads the value the expression
// leaked into its last temporary.
func evalInit(o *oracle.Oracle, raw []byte, ctx *backend.ExprContext) (string, error) {
	instrs, err := wasm.DecodeInstructions(raw)
	if err != nil {
		return "", errors.New(errors.PhaseTranslate, errors.KindInvalidData).
			Detail("malformed init expression: %v", err).Build()
	}

	fa := factory.New(o)
	block, _, err := fa.Build(0, 1, instrs)
	if err != nil {
		return "", err
	}

	set, ok := lastSetTemporary(block)
	if !ok {
		return "", errors.New(errors.PhaseTranslate, errors.KindInvalidData).
			Detail("init expression produced no value").Build()
	}

	return backend.EmitExpr(set.Value, ctx, false), nil
}

// lastSetTemporary returns the final SetTemporary statement in block's own
// body - the leaked result a single-result init expression always ends
// with once it reaches its closing end (spec.md §4.3's "leaking").
func lastSetTemporary(block *ast.Block) (ast.SetTemporary, bool) {
	for i := len(block.Code) - 1; i >= 0; i-- {
		if set, ok := block.Code[i].(ast.SetTemporary); ok {
			return set, true
		}
	}
	return ast.SetTemporary{}, false
}
