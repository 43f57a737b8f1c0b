// Package errors provides the structured error type used across the
// decode/translate/emit pipeline.
//
// Errors are categorized by Phase (which pipeline stage produced them) and
// Kind (what went wrong). Use the Builder for construction:
//
//	err := errors.New(errors.PhaseTranslate, errors.KindUnsupported).
//		Detail("unsupported operator 0x%02x", instr.Opcode).
//		Build()
//
// All errors implement the standard error interface and support
// errors.Is/As via Unwrap.
package errors
