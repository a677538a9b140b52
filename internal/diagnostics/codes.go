// Package diagnostics provides the structured error/warning reports emitted by
// the compiler core, modelled on AILANG's internal/errors package: every
// condition gets a stable code grouped by phase so tooling can key off it
// instead of message text.
package diagnostics

// Error and warning codes, grouped by the taxonomy in the design's error
// handling section: type errors (TYP), semantic errors (SEM), parse errors
// (PAR), resolution errors (RES), unsupported constructs (UNS), warnings
// (WRN) and internal assertion failures (INT).
const (
	// ============================================================
	// Type errors (TYP###)
	// ============================================================

	// TYP001 indicates an expression is not assignable to its contextual type.
	TYP001 = "TYP001"
	// TYP002 indicates a binary or unary operator has no arithmetic meaning for
	// the operand types involved (and no matching operator overload).
	TYP002 = "TYP002"
	// TYP003 indicates a call-site argument count mismatch.
	TYP003 = "TYP003"
	// TYP004 indicates a call whose callee is not a function value.
	TYP004 = "TYP004"
	// TYP005 indicates an indexed access without matching INDEXED_GET/SET overloads.
	TYP005 = "TYP005"
	// TYP006 indicates void used where a value is required.
	TYP006 = "TYP006"

	// ============================================================
	// Semantic errors (SEM###)
	// ============================================================

	// SEM001 indicates `break` or `continue` outside any enclosing loop/switch.
	SEM001 = "SEM001"
	// SEM002 indicates `super` used outside a derived class.
	SEM002 = "SEM002"
	// SEM003 indicates a `const` declaration without an initializer.
	SEM003 = "SEM003"
	// SEM004 indicates an assignment to a const binding or readonly field
	// outside its owning constructor.
	SEM004 = "SEM004"
	// SEM005 indicates a duplicate identifier in the same scope.
	SEM005 = "SEM005"
	// SEM006 indicates an unresolved identifier, property, or class.
	SEM006 = "SEM006"
	// SEM007 indicates a mutable global exported without the MUTABLE_GLOBAL feature.
	SEM007 = "SEM007"
	// SEM008 indicates an enum member initializer that does not fold to a
	// compile-time integer constant.
	SEM008 = "SEM008"

	// ============================================================
	// Parse errors (PAR###)
	// ============================================================

	// PAR001 indicates the lexer encountered a character or token it could
	// not classify.
	PAR001 = "PAR001"
	// PAR002 indicates the parser encountered a token it did not expect at
	// that point in the grammar.
	PAR002 = "PAR002"

	// ============================================================
	// Resolver errors (RES###)
	// ============================================================

	// RES001 indicates a type annotation names a declaration the resolver
	// could not find.
	RES001 = "RES001"
	// RES002 indicates two declarations in the same scope share a name.
	RES002 = "RES002"
	// RES003 indicates a generic declaration was instantiated with the wrong
	// number of type arguments.
	RES003 = "RES003"
	// RES004 indicates a class's base class could not be resolved, or would
	// introduce an inheritance cycle.
	RES004 = "RES004"

	// ============================================================
	// Unsupported constructs (UNS###)
	// ============================================================

	// UNS001 indicates a try/catch/finally statement.
	UNS001 = "UNS001"
	// UNS002 indicates a labelled break or continue.
	UNS002 = "UNS002"
	// UNS003 indicates a rest parameter.
	UNS003 = "UNS003"
	// UNS004 indicates an interface declaration.
	UNS004 = "UNS004"
	// UNS005 indicates a builtin call the builtins package could not resolve.
	UNS005 = "UNS005"

	// ============================================================
	// Warnings (WRN###)
	// ============================================================

	// WRN001 indicates a `const` global whose initializer is not constant; it
	// is demoted to a mutable global initialised in the start function.
	WRN001 = "WRN001"
	// WRN002 indicates a function could not be inlined into itself (recursion guard).
	WRN002 = "WRN002"
	// WRN003 indicates a pattern that a switch's exhaustiveness check flagged
	// as possibly incomplete even though a default arm was present.
	WRN003 = "WRN003"

	// ============================================================
	// Internal assertion failures (INT###)
	// ============================================================

	// INT001 indicates an invariant of the compiler core was violated.
	INT001 = "INT001"
)

// Phase names used in Report.Phase.
const (
	PhaseParse    = "parse"
	PhaseResolve  = "resolve"
	PhaseCompile  = "compile"
	PhaseLayout   = "layout"
	PhaseInternal = "internal"
)
