package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which pipeline stage produced the error.
type Phase string

const (
	PhaseDecode    Phase = "decode"    // Wasm binary to wasm.Module
	PhaseTranslate Phase = "translate" // Wasm operator stream to structured IR
	PhaseEmit      Phase = "emit"      // IR to Lua text
)

// Kind categorizes the error within its phase.
type Kind string

const (
	KindInvalidData Kind = "invalid_data"
	KindOutOfBounds Kind = "out_of_bounds"
	KindUnsupported Kind = "unsupported"
	KindNotFound    Kind = "not_found"
)

// Error is the structured error type returned by every translate/assemble
// operation.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same Phase and Kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction.
type Builder struct {
	err Error
}

// New creates a new error builder for the given phase and kind.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Cause sets the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *Error {
	return &b.err
}
