package assemble

import (
	"fmt"
	"strings"
)

// writeInitCode emits `local function run_init_code() ... end`, which
// materializes table, memory, global, element, and data initializers in
// that order (spec.md §4.7 point 5), grounded on
// original_source/src/backend/translation/level_3.rs's gen_start_point:
// the same five gen_*_list passes, run once from a single closure.
func (b *builder) writeInitCode(out *strings.Builder) error {
	out.WriteString("local function run_init_code()\n")
	if err := b.writeTableInits(out); err != nil {
		return err
	}
	if err := b.writeMemoryInits(out); err != nil {
		return err
	}
	if err := b.writeGlobalInits(out); err != nil {
		return err
	}
	if err := b.writeElementInits(out); err != nil {
		return err
	}
	if err := b.writeDataInits(out); err != nil {
		return err
	}
	out.WriteString("end\n")
	return nil
}

func (b *builder) writeTableInits(out *strings.Builder) error {
	offset := b.module.NumImportedTables()
	for i, t := range b.module.Tables {
		fmt.Fprintf(out, "TABLE_LIST[%d] = { min = %d", offset+i, t.Limits.Min)
		if t.Limits.Max != nil {
			fmt.Fprintf(out, ", max = %d", *t.Limits.Max)
		}
		out.WriteString(", data = {} }\n")
	}
	return nil
}

func (b *builder) writeMemoryInits(out *strings.Builder) error {
	offset := b.module.NumImportedMemories()
	for i, m := range b.module.Memories {
		maxArg := "nil"
		if m.Limits.Max != nil {
			maxArg = fmt.Sprintf("%d", *m.Limits.Max)
		}
		fmt.Fprintf(out, "MEMORY_LIST[%d] = rt.allocator.new(%d, %s)\n", offset+i, m.Limits.Min, maxArg)
	}
	return nil
}

func (b *builder) writeGlobalInits(out *strings.Builder) error {
	offset := b.module.NumImportedGlobals()
	for i, g := range b.module.Globals {
		value, err := b.evalInit(g.Init)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "GLOBAL_LIST[%d] = { value = %s }\n", offset+i, value)
	}
	return nil
}

// isActiveElement reports whether flags denote an active element segment
// (the only kind materialized at init time; passive/declarative segments
// are only ever consumed by bulk-memory table.init, out of scope).
func isActiveElement(flags uint32) bool {
	switch flags {
	case 0, 2, 4, 6:
		return true
	default:
		return false
	}
}

func (b *builder) writeElementInits(out *strings.Builder) error {
	for _, el := range b.module.Elements {
		if !isActiveElement(el.Flags) {
			continue
		}
		offset, err := b.evalInit(el.Offset)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "do\nlocal target = TABLE_LIST[%d].data\nlocal offset = %s\n", el.TableIdx, offset)
		if len(el.FuncIdxs) > 0 {
			for i, fn := range el.FuncIdxs {
				fmt.Fprintf(out, "target[offset + %d] = FUNC_LIST[%d]\n", i, fn)
			}
		} else {
			for i, expr := range el.Exprs {
				v, err := b.evalInit(expr)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "target[offset + %d] = %s\n", i, v)
			}
		}
		out.WriteString("end\n")
	}
	return nil
}

// isActiveData reports whether flags denote an active data segment.
func isActiveData(flags uint32) bool {
	return flags == 0 || flags == 2
}

func (b *builder) writeDataInits(out *strings.Builder) error {
	for _, d := range b.module.Data {
		if !isActiveData(d.Flags) {
			continue
		}
		offset, err := b.evalInit(d.Offset)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "do\nlocal target = MEMORY_LIST[%d]\nlocal offset = %s\nlocal data = %s\n",
			d.MemIdx, offset, luaByteString(d.Init))
		out.WriteString("rt.allocator.init(target, offset, data)\nend\n")
	}
	return nil
}

// luaByteString renders raw bytes as a Lua string literal using \xNN
// escapes for every byte, the way
// original_source/src/backend/translation/level_3.rs's gen_data_list does
// - safe regardless of which bytes appear, including embedded NULs and
// non-UTF8 data.
func luaByteString(data []byte) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range data {
		fmt.Fprintf(&sb, "\\x%02X", c)
	}
	sb.WriteByte('"')
	return sb.String()
}
