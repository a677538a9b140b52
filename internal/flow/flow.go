// Package flow implements the per-function control-flow analysis described
// in the design's component C2: fork/merge tracking of returns, breaks,
// continues, throws, allocations, and per-local "known wrapped" bits.
package flow

import (
	"github.com/sunholo/wasmc/internal/typesys"
	"github.com/sunholo/wasmc/internal/wasmir"
)

// Bits is the set of terminal/contextual flags a Flow tracks.
type Bits uint32

const (
	Returns Bits = 1 << iota
	ReturnsWrapped
	Breaks
	ConditionallyBreaks
	Continues
	ConditionallyContinues
	Throws
	Allocates
	InlineContext
	UncheckedContext
)

func (b Bits) Has(f Bits) bool { return b&f != 0 }
func (b *Bits) Set(f Bits)     { *b |= f }

// Local is the minimal local-variable handle Flow needs: an index and type,
// matching program.Local's role without importing the program package (flow
// is a leaf package the program and compiler packages both depend on).
type Local struct {
	Index int
	Type  typesys.Type
}

// Flow is one branch's analysis state. A function body gets a root Flow;
// every nested block/if-arm/loop/switch-case forks a child that is later
// merged back with Inherit/InheritConditional/InheritMutual.
type Flow struct {
	parent *Flow

	ReturnType   typesys.Type
	ReturnLabel  string // set only inside an inlined body
	ResultLocal  int    // local receiving ReturnLabel's value; -1 if ReturnLabel is unset
	BreakLabel   string
	ContinueLabel string

	flags Bits

	wrapped map[int]bool // local index -> known wrapped
	scoped  map[string]Local // virtual/scoped locals introduced by this branch

	pool []*Flow // free-list for reuse, owned by the root
}

// New creates the root Flow for a function body.
func New(returnType typesys.Type) *Flow {
	return &Flow{
		ReturnType:  returnType,
		ResultLocal: -1,
		wrapped:     map[int]bool{},
		scoped:      map[string]Local{},
	}
}

// Fork creates a child Flow inheriting the contextual (non-terminal) state of
// its parent: return type, labels, and the wrapped-locals map (copied, so
// mutations inside the branch do not leak until merged back explicitly).
func (f *Flow) Fork() *Flow {
	var child *Flow
	if n := len(f.pool); n > 0 {
		child = f.pool[n-1]
		f.pool = f.pool[:n-1]
		*child = Flow{}
	} else {
		child = &Flow{}
	}
	child.parent = f
	child.ReturnType = f.ReturnType
	child.ReturnLabel = f.ReturnLabel
	child.ResultLocal = f.ResultLocal
	child.BreakLabel = f.BreakLabel
	child.ContinueLabel = f.ContinueLabel
	child.flags = f.flags & (InlineContext | UncheckedContext)
	child.wrapped = map[int]bool{}
	for k, v := range f.wrapped {
		child.wrapped[k] = v
	}
	child.scoped = map[string]Local{}
	return child
}

// Free returns child to the root's pool for reuse. It is a bug to use child
// after Free; callers must merge its results first.
func (f *Flow) Free(child *Flow) {
	root := f
	for root.parent != nil {
		root = root.parent
	}
	root.pool = append(root.pool, child)
}

func (f *Flow) Has(b Bits) bool  { return f.flags.Has(b) }
func (f *Flow) Set(b Bits)       { f.flags.Set(b) }
func (f *Flow) Flags() Bits      { return f.flags }
func (f *Flow) SetFlags(b Bits)  { f.flags = b }

// SetWrapped records that the value currently held by local idx is known to
// already be wrapped to its declared short-integer width.
func (f *Flow) SetWrapped(idx int, wrapped bool) { f.wrapped[idx] = wrapped }

// IsWrapped reports whether local idx is known wrapped in this Flow.
func (f *Flow) IsWrapped(idx int) bool { return f.wrapped[idx] }

// DeclareScoped introduces a named scoped local (virtual const or inline
// parameter alias) visible to lookups in this Flow and its descendants until
// the Flow is freed.
func (f *Flow) DeclareScoped(name string, l Local) { f.scoped[name] = l }

// LookupScoped searches this Flow and its ancestors for a scoped local.
func (f *Flow) LookupScoped(name string) (Local, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if l, ok := cur.scoped[name]; ok {
			return l, true
		}
	}
	return Local{}, false
}

// Inherit merges an unconditionally-executed child (e.g. a plain block with
// no dynamic condition) into f: every bit the child set becomes set in f,
// and the child's wrapped-locals state replaces f's.
func (f *Flow) Inherit(child *Flow) {
	f.flags |= child.flags
	for k, v := range child.wrapped {
		f.wrapped[k] = v
	}
}

// InheritConditional merges a conditionally-executed child (one arm of an
// if with no else, a loop body that might not run) into f: terminal bits
// weaken to their CONDITIONALLY_* form instead of being set unconditionally.
// Wrapped-local state is not propagated, since the branch might not run.
func (f *Flow) InheritConditional(child *Flow) {
	if child.Has(Breaks) {
		f.Set(ConditionallyBreaks)
	}
	if child.Has(ConditionallyBreaks) {
		f.Set(ConditionallyBreaks)
	}
	if child.Has(Continues) {
		f.Set(ConditionallyContinues)
	}
	if child.Has(ConditionallyContinues) {
		f.Set(ConditionallyContinues)
	}
	// Returns/Throws/Allocates are also only conditional in this shape; they
	// have no distinct "conditional" bit in the design beyond break/continue,
	// so they are simply not propagated (the parent cannot assume the branch ran).
}

// InheritMutual merges two arms of an if/else (or similar two-way branch)
// into f: a bit set in BOTH arms becomes unconditional in f; a bit set in
// exactly one of them degrades to its conditional form (for Breaks/Continues)
// or is dropped (for Returns/Throws/Allocates, matching InheritConditional).
func (f *Flow) InheritMutual(then, els *Flow) {
	both := then.flags & els.flags
	f.flags |= both

	onlyThen := then.flags &^ els.flags
	onlyEls := els.flags &^ then.flags
	for _, b := range []Bits{Breaks, Continues} {
		if onlyThen.Has(b) || onlyEls.Has(b) {
			if b == Breaks {
				f.Set(ConditionallyBreaks)
			} else {
				f.Set(ConditionallyContinues)
			}
		}
	}
	if both.Has(ConditionallyBreaks) || onlyThen.Has(ConditionallyBreaks) || onlyEls.Has(ConditionallyBreaks) {
		if !both.Has(Breaks) {
			f.Set(ConditionallyBreaks)
		}
	}
	if both.Has(ConditionallyContinues) || onlyThen.Has(ConditionallyContinues) || onlyEls.Has(ConditionallyContinues) {
		if !both.Has(Continues) {
			f.Set(ConditionallyContinues)
		}
	}

	// Wrapped-local state merges only where both arms agree.
	for k, v := range then.wrapped {
		if v2, ok := els.wrapped[k]; ok && v2 == v {
			f.wrapped[k] = v
		}
	}
}

// CanOverflow is a conservative predicate over IR shapes: it recognises
// constant expressions, locals the Flow already knows are wrapped, and
// simple loads (which the memory layout guarantees are pre-truncated to
// their declared width), returning false (cannot overflow) for those and
// true otherwise. A true result means the caller must insert an explicit
// wrap before relying on the value's narrow width.
func (f *Flow) CanOverflow(expr *wasmir.Expr, t typesys.Type) bool {
	if !t.Short() {
		return false
	}
	switch expr.Op {
	case wasmir.OpConst:
		return false
	case wasmir.OpLoad:
		return false
	case wasmir.OpGetLocal:
		return !f.IsWrapped(expr.LocalIndex)
	case wasmir.OpUnary:
		switch expr.UnOp {
		case wasmir.ExtendI8ToI32, wasmir.ExtendI16ToI32, wasmir.EqzI32, wasmir.EqzI64:
			return false
		}
	case wasmir.OpBinary:
		switch expr.BinOp {
		case wasmir.AndI32:
			return false // masked results cannot exceed the mask's width
		case wasmir.EqI32, wasmir.NeI32, wasmir.LtI32S, wasmir.LtI32U, wasmir.LeI32S, wasmir.LeI32U,
			wasmir.GtI32S, wasmir.GtI32U, wasmir.GeI32S, wasmir.GeI32U:
			return false // comparisons produce 0/1, safe for bool
		}
	}
	return true
}
