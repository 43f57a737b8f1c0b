package wat

import (
	"github.com/wasm2lua/wasm2lua/wat/internal/encoder"
	"github.com/wasm2lua/wasm2lua/wat/internal/parser"
	"github.com/wasm2lua/wasm2lua/wat/internal/token"
)

func Compile(source string) ([]byte, error) {
	tokens := token.Tokenize(source)
	p := parser.New(tokens)
	mod, err := p.Parse()
	if err != nil {
		return nil, err
	}
	return encoder.Encode(mod), nil
}
