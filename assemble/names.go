package assemble

import (
	"bytes"

	"github.com/wasm2lua/wasm2lua/wasm"
)

// funcNames returns the function index -> symbolic name map carried by the
// "name" custom section's function-names subsection (id 1), if present.
// The wasm decoder keeps custom sections as opaque (name, data) pairs, so
// the name-section's own internal subsection structure is parsed here,
// once, at assembly time - the one place in this module that cares about
// function names rather than just indices.
func funcNames(sections []wasm.CustomSection) map[uint32]string {
	for _, cs := range sections {
		if cs.Name != "name" {
			continue
		}
		names, ok := parseNameSection(cs.Data)
		if ok {
			return names
		}
	}
	return nil
}

const nameSubsectionFunc = 1

func readExact(r *bytes.Reader, n uint32) ([]byte, bool) {
	buf := make([]byte, n)
	for i := range buf {
		b, err := r.ReadByte()
		if err != nil {
			return nil, false
		}
		buf[i] = b
	}
	return buf, true
}

func parseNameSection(data []byte) (map[uint32]string, bool) {
	r := bytes.NewReader(data)
	for r.Len() > 0 {
		id, err := r.ReadByte()
		if err != nil {
			return nil, false
		}
		size, err := wasm.ReadLEB128u(r)
		if err != nil {
			return nil, false
		}
		payload, ok := readExact(r, size)
		if !ok {
			return nil, false
		}
		if id == nameSubsectionFunc {
			return parseNameMap(payload)
		}
	}
	return nil, false
}

func parseNameMap(data []byte) (map[uint32]string, bool) {
	r := bytes.NewReader(data)
	count, err := wasm.ReadLEB128u(r)
	if err != nil {
		return nil, false
	}
	names := make(map[uint32]string, count)
	for i := uint32(0); i < count; i++ {
		idx, err := wasm.ReadLEB128u(r)
		if err != nil {
			return nil, false
		}
		length, err := wasm.ReadLEB128u(r)
		if err != nil {
			return nil, false
		}
		buf, ok := readExact(r, length)
		if !ok {
			return nil, false
		}
		names[idx] = string(buf)
	}
	return names, true
}
