package stack

import (
	"github.com/wasm2lua/wasm2lua/errors"
	"github.com/wasm2lua/wasm2lua/translate/ast"
)

// Allocator tracks the high-water mark of temporary indices reserved across
// every frame of one function, so FuncData.NumStack can be read off after
// the whole body is built (spec.md §3.2).
type Allocator struct {
	peak int
}

// Peak returns one past the highest temporary index ever reserved.
func (a *Allocator) Peak() int { return a.peak }

func (a *Allocator) reserve(base, n int) {
	if top := base + n; top > a.peak {
		a.peak = top
	}
}

// slot is one value-stack entry: a pending expression plus the Wasm state
// it reads, not yet committed to a temporary.
type slot struct {
	expr    ast.Expr
	effects EffectSet
}

// Stack is one block's frame of the per-function value stack. previous is
// the absolute temporary index of slot 0 in this frame; slot i therefore
// occupies absolute index previous+i.
type Stack struct {
	previous int
	slots    []slot
	alloc    *Allocator
}

// New starts a fresh top-level frame for a function body.
func New(alloc *Allocator) *Stack {
	return &Stack{alloc: alloc}
}

// Depth returns the number of values currently on this frame.
func (s *Stack) Depth() int { return len(s.slots) }

// TopIndex returns the absolute temporary index n slots below the current
// top of this frame (the same "old" computation GetBrAlignment uses), for
// callers that need to recover a prior split point without renaming.
func (s *Stack) TopIndex(n int) int {
	return s.previous + len(s.slots) - n
}

// Restore synthesizes a frame of n already-committed temporaries starting
// at base, for a sibling block (e.g. an `else` arm) that reuses the
// temporary range an earlier sibling (the `then` arm) already leaked into.
func Restore(alloc *Allocator, base, n int) *Stack {
	s := &Stack{previous: base, alloc: alloc}
	for i := 0; i < n; i++ {
		idx := base + i
		s.slots = append(s.slots, slot{expr: ast.GetTemporary{Index: idx}})
	}
	return s
}

// Base returns the absolute temporary index of this frame's slot 0.
func (s *Stack) Base() int { return s.previous }

// Push records e with no known read effects (a literal or an expression
// built entirely from already-leaked temporaries).
func (s *Stack) Push(e ast.Expr) {
	s.PushWithRead(e, nil)
}

// PushWithRead records e together with the set of Wasm state it reads.
func (s *Stack) PushWithRead(e ast.Expr, effects EffectSet) {
	s.slots = append(s.slots, slot{expr: e, effects: effects})
}

// PushWithSingle records e, inferring its read effect from its shape
// (GetLocal, GetGlobal, LoadAt, MemorySize); anything else is treated as
// reading nothing.
func (s *Stack) PushWithSingle(e ast.Expr) {
	s.PushWithRead(e, inferEffect(e))
}

// InferSingle returns the single read effect e's own shape implies
// (GetLocal/GetGlobal/LoadAt/MemorySize), or nil for anything else. Callers
// building a compound expression from popped operands should union this
// with each operand's own effect set, not replace it.
func InferSingle(e ast.Expr) EffectSet {
	return inferEffect(e)
}

func inferEffect(e ast.Expr) EffectSet {
	switch n := e.(type) {
	case ast.GetLocal:
		return EffectSet{{Kind: EffectLocal, Index: n.Index}}
	case ast.GetGlobal:
		return EffectSet{{Kind: EffectGlobal, Index: n.Index}}
	case ast.LoadAt:
		return EffectSet{{Kind: EffectMemory, Index: n.Memory}}
	case ast.MemorySize:
		return EffectSet{{Kind: EffectMemory, Index: n.Memory}}
	default:
		return nil
	}
}

// Pop removes and returns the top value, discarding its effect set.
func (s *Stack) Pop() (ast.Expr, error) {
	e, _, err := s.PopWithRead()
	return e, err
}

// PopWithRead removes and returns the top value along with its effect set.
func (s *Stack) PopWithRead() (ast.Expr, EffectSet, error) {
	n := len(s.slots)
	if n == 0 {
		return nil, nil, errors.New(errors.PhaseTranslate, errors.KindOutOfBounds).
			Detail("pop from empty value stack").Build()
	}
	top := s.slots[n-1]
	s.slots = s.slots[:n-1]
	return top.expr, top.effects, nil
}

// PopLen removes and returns the top n values, left-to-right in original
// push order (i.e. deepest-first).
func (s *Stack) PopLen(n int) ([]ast.Expr, error) {
	if n == 0 {
		return nil, nil
	}
	if n > len(s.slots) {
		return nil, errors.New(errors.PhaseTranslate, errors.KindOutOfBounds).
			Detail("pop %d values but only %d on stack", n, len(s.slots)).Build()
	}
	start := len(s.slots) - n
	out := make([]ast.Expr, n)
	for i, sl := range s.slots[start:] {
		out[i] = sl.expr
	}
	s.slots = s.slots[:start]
	return out, nil
}

// PushTemporary reserves n fresh temporary indices at the current top of
// this frame and pushes a GetTemporary for each, returning them in index
// order. The reserved range also advances the allocator's peak.
func (s *Stack) PushTemporary(n int) []ast.Expr {
	base := s.previous + len(s.slots)
	s.alloc.reserve(base, n)
	out := make([]ast.Expr, n)
	for i := 0; i < n; i++ {
		idx := base + i
		e := ast.GetTemporary{Index: idx}
		out[i] = e
		s.slots = append(s.slots, slot{expr: e})
	}
	return out
}

// SplitLast detaches the top n slots of this frame into a new child frame,
// in original (deepest-first) order, sharing this frame's allocator. The
// child's base is the absolute index the detached slots already occupied,
// so any of them already committed to a temporary keep their index.
func (s *Stack) SplitLast(n int) (*Stack, error) {
	if n > len(s.slots) {
		return nil, errors.New(errors.PhaseTranslate, errors.KindOutOfBounds).
			Detail("split %d values but only %d on stack", n, len(s.slots)).Build()
	}
	start := len(s.slots) - n
	child := &Stack{
		previous: s.previous + start,
		slots:    append([]slot(nil), s.slots[start:]...),
		alloc:    s.alloc,
	}
	s.slots = s.slots[:start]
	return child, nil
}

// LeakInto walks every slot in this frame and, for any whose expression is
// not already the committed GetTemporary for its own absolute index and
// whose effect set satisfies predicate, emits a SetTemporary statement
// appended to *code, replaces the slot with the committed temporary, and
// raises the allocator's peak to cover that index.
// predicate == nil leaks unconditionally (used at block boundaries and
// immediately before a terminator, per spec.md §4.3).
func (s *Stack) LeakInto(code *[]ast.Stat, predicate func(Effect) bool) {
	for i := range s.slots {
		idx := s.previous + i
		sl := &s.slots[i]
		if committed(sl.expr, idx) {
			continue
		}
		if predicate != nil && !sl.effects.Any(predicate) {
			continue
		}
		*code = append(*code, ast.SetTemporary{Value: sl.expr, Index: idx})
		s.alloc.reserve(idx, 1)
		sl.expr = ast.GetTemporary{Index: idx}
		sl.effects = nil
	}
}

func committed(e ast.Expr, idx int) bool {
	t, ok := e.(ast.GetTemporary)
	return ok && t.Index == idx
}

// GetBrAlignment computes the Align that renames this frame's top
// parResult values down to the branch target frame's parStart..parStart+
// parResult-1, as spec.md §3.3 invariant 4 requires of every Br.
func (s *Stack) GetBrAlignment(parStart, parResult int) ast.Align {
	old := s.previous + len(s.slots) - parResult
	return ast.Align{New: parStart, Old: old, Length: parResult}
}
