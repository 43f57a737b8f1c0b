// Package factory builds the structured IR (package ast) from a function
// body's flat Wasm operator list, per spec.md §4.4. It is the core of the
// translation pipeline: it virtualizes the implicit Wasm operand stack
// (package stack) against an explicit control-frame stack, turning
// block/loop/if/br/br_if/br_table/return into Block, If, Br, BrIf, BrTable
// nodes with resolved targets and stack-alignment renames.
package factory
