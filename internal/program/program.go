package program

import "github.com/sunholo/wasmc/internal/ast"

// Program is the fully-resolved model the compiler core walks: every source
// in compilation order, a flat element table keyed by qualified name, and
// the root namespace new top-level lookups start from.
type Program struct {
	Sources []*ast.Source
	Root    *Namespace
	byName  map[string]Entity

	// MathNamespace / MathfNamespace are not set by the resolver and not
	// read by the compiler core; float ** and % lower to calls of imported
	// functions instead (see compiler's compileFloatIntrinsic).
	MathNamespace  *Namespace
	MathfNamespace *Namespace
}

// NewProgram returns an empty program with an empty root namespace.
func NewProgram() *Program {
	root := &Namespace{Members: map[string]Entity{}}
	return &Program{Root: root, byName: map[string]Entity{}}
}

// Register adds e to the flat lookup table keyed by its qualified name.
func (p *Program) Register(e Entity) {
	p.byName[e.Header().Qualified] = e
}

// Lookup returns the entity registered under qualified name, if any.
func (p *Program) Lookup(qualified string) (Entity, bool) {
	e, ok := p.byName[qualified]
	return e, ok
}

func (p *Program) LookupGlobal(qualified string) (*Global, bool) {
	e, ok := p.Lookup(qualified)
	if !ok {
		return nil, false
	}
	g, ok := e.(*Global)
	return g, ok
}

func (p *Program) LookupFunctionPrototype(qualified string) (*FunctionPrototype, bool) {
	e, ok := p.Lookup(qualified)
	if !ok {
		return nil, false
	}
	f, ok := e.(*FunctionPrototype)
	return f, ok
}

func (p *Program) LookupClass(qualified string) (*Class, bool) {
	e, ok := p.Lookup(qualified)
	if !ok {
		return nil, false
	}
	c, ok := e.(*Class)
	return c, ok
}

func (p *Program) LookupClassPrototype(qualified string) (*ClassPrototype, bool) {
	e, ok := p.Lookup(qualified)
	if !ok {
		return nil, false
	}
	c, ok := e.(*ClassPrototype)
	return c, ok
}

func (p *Program) LookupEnum(qualified string) (*Enum, bool) {
	e, ok := p.Lookup(qualified)
	if !ok {
		return nil, false
	}
	v, ok := e.(*Enum)
	return v, ok
}

// FieldByName finds a field (searching the base chain) by simple name.
func (c *Class) FieldByName(name string) (*Field, bool) {
	for cur := c; cur != nil; cur = cur.Base {
		for _, f := range cur.Fields {
			if f.Name == name {
				return f, true
			}
		}
	}
	return nil, false
}

// MethodByName finds an instance method (searching the base chain) by simple name.
func (c *Class) MethodByName(name string) (*Function, bool) {
	for cur := c; cur != nil; cur = cur.Base {
		for _, m := range cur.Methods {
			if m.Name == name {
				return m, true
			}
		}
	}
	return nil, false
}

// OperatorOverload finds an instance method decorated as the given operator.
func (c *Class) OperatorOverload(op OperatorKind) (*Function, bool) {
	for cur := c; cur != nil; cur = cur.Base {
		for _, m := range cur.Methods {
			if m.Prototype != nil && m.Prototype.Operator == op {
				return m, true
			}
		}
	}
	return nil, false
}

// PropertyByName finds a property accessor pair (searching the base chain).
func (c *Class) PropertyByName(name string) (*Property, bool) {
	for cur := c; cur != nil; cur = cur.Base {
		for _, p := range cur.Properties {
			if p.Name == name {
				return p, true
			}
		}
	}
	return nil, false
}
