package diagnostics

import "github.com/sunholo/wasmc/internal/ast"

// Bag accumulates diagnostics for a single compilation. It is never nil in
// practice; a Compiler owns exactly one Bag for its whole run, matching the
// design's statement that "compilation continues across errors where
// feasible, so downstream users see a complete diagnostic set".
type Bag struct {
	Reports []*Report
}

// NewBag returns an empty diagnostic bag.
func NewBag() *Bag { return &Bag{} }

func (b *Bag) add(r *Report) *Report {
	b.Reports = append(b.Reports, r)
	return r
}

// Error records an error-severity diagnostic.
func (b *Bag) Error(code, phase, message string, rng *ast.Range) *Report {
	return b.add(New(code, phase, SeverityError, message, rng))
}

// Warning records a warning-severity diagnostic.
func (b *Bag) Warning(code, phase, message string, rng *ast.Range) *Report {
	return b.add(New(code, phase, SeverityWarning, message, rng))
}

// Internal records an internal-assertion diagnostic; callers should treat
// this as compilation-fatal.
func (b *Bag) Internal(message string, rng *ast.Range) *Report {
	return b.add(New(INT001, PhaseInternal, SeverityInternal, message, rng))
}

// HasErrors reports whether any error-or-worse diagnostic was recorded. A
// caller must check this before trusting the emitted module, per the design's
// error handling section.
func (b *Bag) HasErrors() bool {
	for _, r := range b.Reports {
		if r.Severity != SeverityWarning.String() {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics of the given severity.
func (b *Bag) Count(sev Severity) int {
	n := 0
	for _, r := range b.Reports {
		if r.Severity == sev.String() {
			n++
		}
	}
	return n
}
