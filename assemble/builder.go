package assemble

import (
	"fmt"
	"strings"

	"github.com/wasm2lua/wasm2lua/backend"
	"github.com/wasm2lua/wasm2lua/errors"
	"github.com/wasm2lua/wasm2lua/translate/analyze"
	"github.com/wasm2lua/wasm2lua/translate/ast"
	"github.com/wasm2lua/wasm2lua/translate/oracle"
	"github.com/wasm2lua/wasm2lua/wasm"
)

// Assemble renders module into the complete Lua module text spec.md §4.7
// describes. funcs holds the already-built IR for every defined function,
// one per module.Code entry, in code-section order, as produced by running
// translate/factory over each function body; mgr lowers each one to Lua
// text for the chosen dialect.
func Assemble(module *wasm.Module, o *oracle.Oracle, mgr backend.Manager, funcs []*ast.FuncData) (string, error) {
	if len(funcs) != len(module.Code) {
		return "", errors.New(errors.PhaseEmit, errors.KindInvalidData).
			Detail("have %d built functions for %d code-section entries", len(funcs), len(module.Code)).Build()
	}

	b := &builder{
		module: module,
		oracle: o,
		mgr:    mgr,
		names:  funcNames(module.CustomSections),
		ctx:    mgr.ExprContext(),
	}
	return b.build(funcs)
}

// builder accumulates the module's Lua source fragments, the way
// linker/internal/wasm/synthmod.go's SynthModuleBuilder accumulates binary
// sections - here into a single strings.Builder rather than a byte buffer.
type builder struct {
	module *wasm.Module
	oracle *oracle.Oracle
	mgr    backend.Manager
	names  map[uint32]string
	ctx    *backend.ExprContext
}

func (b *builder) build(funcs []*ast.FuncData) (string, error) {
	bodies := make([]string, len(funcs))
	funcMems := make([]analyze.MemorySet, len(funcs))
	helpers := analyze.HelperSet{}
	memories := analyze.MemorySet{}

	for i, fn := range funcs {
		body, fnHelpers, fnMemories, err := b.mgr.EmitFunction(fn)
		if err != nil {
			return "", errors.New(errors.PhaseEmit, errors.KindInvalidData).
				Detail("function %d: %v", b.module.NumImportedFuncs()+i, err).Build()
		}
		bodies[i] = body
		funcMems[i] = fnMemories
		helpers.Union(fnHelpers)
		memories.Union(fnMemories)
	}

	var out strings.Builder
	fmt.Fprintln(&out, "local rt = require(\"wasm2lua-rt\")")
	b.writeHelperLocals(&out, helpers)
	b.writeMemoryLocals(&out, memories)
	b.writeListDecls(&out)

	offset := b.module.NumImportedFuncs()
	for i, fn := range funcs {
		if err := b.writeFuncEntry(&out, offset+i, fn, bodies[i], funcMems[i]); err != nil {
			return "", err
		}
	}

	if err := b.writeInitCode(&out); err != nil {
		return "", err
	}
	if err := b.writeLinker(&out); err != nil {
		return "", err
	}

	return out.String(), nil
}

func (b *builder) writeHelperLocals(out *strings.Builder, helpers analyze.HelperSet) {
	if b.mgr.Dialect() == analyze.DialectLuau {
		fmt.Fprintln(out, "local i64_ZERO = rt.i64.ZERO")
		fmt.Fprintln(out, "local i64_ONE = rt.i64.ONE")
		fmt.Fprintln(out, "local i64_from_u32 = rt.i64.from_u32")
	}
	for _, sym := range helpers.Sorted() {
		fmt.Fprintf(out, "local %s = %s\n", sym, backend.HelperBinding(sym))
	}
}

// writeMemoryLocals forward-declares a module-level upvalue for every
// memory any function touches (spec.md §4.7 point 2). Left unassigned
// here: MEMORY_LIST isn't populated until run_init_code runs, and each
// function that uses memory N refreshes the upvalue itself on every call
// (spec.md §4.6 - memory can grow between calls, so a value captured once
// at load time would go stale).
func (b *builder) writeMemoryLocals(out *strings.Builder, memories analyze.MemorySet) {
	if len(memories) == 0 {
		return
	}
	names := make([]string, 0, len(memories))
	for _, idx := range memories.Sorted() {
		names = append(names, fmt.Sprintf("memory_at_%d", idx))
	}
	fmt.Fprintf(out, "local %s\n", strings.Join(names, ", "))
}

// writeListDecls preallocates FUNC_LIST/TABLE_LIST/MEMORY_LIST/GLOBAL_LIST
// to import_count+defined_count, matching the shape
// original_source/src/backend/translation/level_3.rs's gen_nil_array
// builds: an explicit `[0] = nil` entry plus one further nil per
// remaining slot, documenting the table's intended size up front even
// though Lua arrays need no preallocation to grow into it.
func (b *builder) writeListDecls(out *strings.Builder) {
	nilArray(out, "FUNC_LIST", b.module.NumImportedFuncs()+len(b.module.Code))
	nilArray(out, "TABLE_LIST", b.module.NumImportedTables()+len(b.module.Tables))
	nilArray(out, "MEMORY_LIST", b.module.NumImportedMemories()+len(b.module.Memories))
	nilArray(out, "GLOBAL_LIST", b.module.NumImportedGlobals()+len(b.module.Globals))
}

func nilArray(out *strings.Builder, name string, count int) {
	if count == 0 {
		fmt.Fprintf(out, "local %s = {}\n", name)
		return
	}
	slots := make([]string, count)
	for i := range slots {
		slots[i] = "nil"
	}
	fmt.Fprintf(out, "local %s = {[0] = %s}\n", name, strings.Join(slots, ", "))
}

func (b *builder) writeFuncEntry(out *strings.Builder, index int, fn *ast.FuncData, body string, mems analyze.MemorySet) error {
	params := make([]string, fn.NumParam)
	for i := range params {
		params[i] = backend.LocalName(uint32(i), b.ctx.RegCap)
	}
	name := fn.Name
	if name == "" {
		name = b.names[uint32(index)]
	}
	fmt.Fprintf(out, "FUNC_LIST[%d] = function(%s)", index, strings.Join(params, ", "))
	if name != "" {
		fmt.Fprintf(out, " -- %s", name)
	}
	out.WriteByte('\n')
	for _, idx := range mems.Sorted() {
		fmt.Fprintf(out, "memory_at_%d = MEMORY_LIST[%d]\n", idx, idx)
	}
	out.WriteString(body)
	out.WriteString("\nend\n")
	return nil
}

func (b *builder) evalInit(raw []byte) (string, error) {
	return evalInit(b.oracle, raw, b.ctx)
}
