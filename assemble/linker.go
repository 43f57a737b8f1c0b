package assemble

import (
	"fmt"
	"strings"

	"github.com/wasm2lua/wasm2lua/wasm"
)

// writeLinker emits the module's final `return function(wasm) ... end`
// (spec.md §4.7 point 6), grounded on
// original_source/src/backend/translation/level_3.rs's gen_start_point:
// wire every import from the host-supplied `wasm` table, run
// run_init_code, invoke the start function if any, then return the
// exports grouped by kind.
func (b *builder) writeLinker(out *strings.Builder) error {
	out.WriteString("return function(wasm)\n")
	b.writeImportWiring(out)
	out.WriteString("run_init_code()\n")
	if b.module.Start != nil {
		fmt.Fprintf(out, "FUNC_LIST[%d]()\n", *b.module.Start)
	}
	b.writeExportTable(out)
	out.WriteString("end\n")
	return nil
}

var listNameByKind = map[byte]string{
	wasm.KindFunc:   "FUNC_LIST",
	wasm.KindTable:  "TABLE_LIST",
	wasm.KindMemory: "MEMORY_LIST",
	wasm.KindGlobal: "GLOBAL_LIST",
}

var exportFieldByKind = map[byte]string{
	wasm.KindFunc:   "func_list",
	wasm.KindTable:  "table_list",
	wasm.KindMemory: "memory_list",
	wasm.KindGlobal: "global_list",
}

// writeImportWiring binds every import slot from the host-supplied `wasm`
// table, in the combined index space's order (imports occupy the low
// indices of each *_LIST, spec.md §4.1's decoder contract). Bracket
// indexing, not dot access, is used for the module/field names since
// Wasm import names may contain characters Lua identifiers cannot.
func (b *builder) writeImportWiring(out *strings.Builder) {
	counters := map[byte]int{}
	for _, imp := range b.module.Imports {
		listName, ok := listNameByKind[imp.Desc.Kind]
		if !ok {
			continue
		}
		field := exportFieldByKind[imp.Desc.Kind]
		idx := counters[imp.Desc.Kind]
		counters[imp.Desc.Kind] = idx + 1
		fmt.Fprintf(out, "%s[%d] = wasm[%q][%q][%q]\n", listName, idx, imp.Module, field, imp.Name)
	}
}

func (b *builder) writeExportTable(out *strings.Builder) {
	byKind := map[byte][]wasm.Export{}
	for _, exp := range b.module.Exports {
		byKind[exp.Kind] = append(byKind[exp.Kind], exp)
	}

	out.WriteString("return {\n")
	for _, kind := range []byte{wasm.KindFunc, wasm.KindTable, wasm.KindMemory, wasm.KindGlobal} {
		field := exportFieldByKind[kind]
		listName := listNameByKind[kind]
		fmt.Fprintf(out, "%s = {\n", field)
		for _, exp := range byKind[kind] {
			fmt.Fprintf(out, "[%q] = %s[%d],\n", exp.Name, listName, exp.Idx)
		}
		out.WriteString("},\n")
	}
	out.WriteString("}\n")
}
