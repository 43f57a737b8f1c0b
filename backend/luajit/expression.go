package luajit

import "strconv"

// RegisterCap is the number of plain locals LuaJIT's tracing compiler
// handles efficiently before a function's temporaries spill into a table;
// past it, backend.TempName/LocalName address reg_spill/loc_spill instead
// of declaring more bare locals.
const RegisterCap = 200

// FormatI64 renders a 64-bit literal the LJ way: a decimal literal with
// the `LL` suffix ffi understands as a cdata int64 constant (spec.md
// §4.5).
func FormatI64(v int64) string {
	return strconv.FormatInt(v, 10) + "LL"
}
