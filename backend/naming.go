package backend

import "fmt"

// NoSpillCap tells TempName/LocalName to never spill: every index gets a
// plain reg_i/loc_i name. Luau has no fixed local-variable ceiling the way
// LuaJIT's tracing compiler does, so its manager passes this.
const NoSpillCap = 0

// TempName renders the Lua identifier for temporary index i. Past regCap
// (LuaJIT's register ceiling; NoSpillCap disables this), indices spill into
// a table so the function never declares more plain locals than the
// dialect can efficiently trace (spec.md §4.5: "LJ spills past a register
// cap into reg_spill[i - cap + 1]; LU uses a flat scheme").
func TempName(i, regCap int) string {
	if regCap <= NoSpillCap || i < regCap {
		return fmt.Sprintf("reg_%d", i)
	}
	return fmt.Sprintf("reg_spill[%d]", i-regCap+1)
}

// LocalName renders the Lua identifier for Wasm local index i, under the
// same spill policy as TempName.
func LocalName(i uint32, regCap int) string {
	if regCap <= NoSpillCap || int(i) < regCap {
		return fmt.Sprintf("loc_%d", i)
	}
	return fmt.Sprintf("loc_spill[%d]", int(i)-regCap+1)
}
