// Package opcode classifies WebAssembly operators into the tagged
// enumerations the Factory and the backends dispatch on: loads, stores,
// unary ops (including conversions and sign-extension), binary ops, and
// comparisons. Each tag carries the (head, tail) name pair used to form
// runtime helper symbols, e.g. ("div", "u32") -> "div_u32".
package opcode
