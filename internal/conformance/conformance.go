// Package conformance runs a Wasm module's exported functions under wazero
// and records the results, so backend and assemble tests can assert the
// emitted Lua reproduces the same outcome without needing a Lua runtime.
package conformance

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wasm2lua/wasm2lua/wasm"
)

// Result captures the outcome of one exported-function call: either a
// tuple of raw return values, or a trap (wazero reports traps as an error
// whose message names the trap, e.g. "integer divide by zero").
type Result struct {
	Values  []uint64
	Trapped bool
	Trap    string
}

// Instance is one instantiated module, kept alive across calls so that
// mutable globals and memory persist between them the same way they would
// across calls into the same linked Lua export table.
type Instance struct {
	runtime  wazero.Runtime
	instance api.Module
}

// NewInstance compiles and instantiates wasmBytes under wazero.
func NewInstance(ctx context.Context, wasmBytes []byte) (*Instance, error) {
	rt := wazero.NewRuntime(ctx)

	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("compile module: %w", err)
	}

	instance, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("instantiate module: %w", err)
	}

	return &Instance{runtime: rt, instance: instance}, nil
}

// Close releases the underlying wazero runtime and instance.
func (i *Instance) Close(ctx context.Context) {
	i.instance.Close(ctx)
	i.runtime.Close(ctx)
}

// Call invokes funcName with args, returning the raw i32/i64/f32/f64 result
// tuple. args must already be bit patterns for the callee's parameter types
// (EncodeF32/EncodeF64 for floats, a plain uint64 cast for integers).
func (i *Instance) Call(ctx context.Context, funcName string, args ...uint64) (Result, error) {
	fn := i.instance.ExportedFunction(funcName)
	if fn == nil {
		return Result{}, fmt.Errorf("no exported function %q", funcName)
	}

	results, err := fn.Call(ctx, args...)
	if err != nil {
		// wazero surfaces traps (unreachable, divide by zero, out-of-bounds
		// access, ...) as a plain call error rather than a typed sentinel.
		return Result{Trapped: true, Trap: err.Error()}, nil
	}

	return Result{Values: results}, nil
}

// Call is a one-shot convenience wrapper for scenarios that only need a
// single invocation: it instantiates wasmBytes, calls funcName once, and
// tears the instance down again.
func Call(ctx context.Context, wasmBytes []byte, funcName string, args ...uint64) (Result, error) {
	inst, err := NewInstance(ctx, wasmBytes)
	if err != nil {
		return Result{}, err
	}
	defer inst.Close(ctx)
	return inst.Call(ctx, funcName, args...)
}

// EncodeF32 re-exports wazero's float32 bit-pattern encoding, for building
// Call's args.
func EncodeF32(v float32) uint64 { return api.EncodeF32(v) }

// EncodeF64 re-exports wazero's float64 bit-pattern encoding, for building
// Call's args.
func EncodeF64(v float64) uint64 { return api.EncodeF64(v) }

// DecodeF32 re-exports wazero's float32 bit-pattern decoding, for reading
// Call's results.
func DecodeF32(v uint64) float32 { return api.DecodeF32(v) }

// DecodeF64 re-exports wazero's float64 bit-pattern decoding, for reading
// Call's results.
func DecodeF64(v uint64) float64 { return api.DecodeF64(v) }

// ExportedFuncNames lists every function export in module, in declaration
// order, for tests that want to compare against the names the Lua output
// lists in the func_list table it returns.
func ExportedFuncNames(module *wasm.Module) []string {
	var names []string
	for _, exp := range module.Exports {
		if exp.Kind == wasm.KindFunc {
			names = append(names, exp.Name)
		}
	}
	return names
}
