package main

import "fmt"

// TypeScope controls which referenced types produce graph edges.
type TypeScope int

const (
	// ScopeInternal keeps only types belonging to the project's own
	// compilation unit. This is the default and recommended mode.
	ScopeInternal TypeScope = iota
	// ScopeAll keeps every named, non-builtin type.
	ScopeAll
)

// Extractor walks a code model and produces the relation graph for it.
type Extractor struct {
	Scope TypeScope
}

// Extract performs one sequential pass over the model's types and returns
// the completed, immutable graph. A nil or uninitialised model is a
// configuration error reported before any edge is recorded; individual
// unresolvable members are silently skipped, never errors.
func (e *Extractor) Extract(model *CodeModel) (*TypeGraph, error) {
	if model == nil {
		return nil, fmt.Errorf("extract: code model not initialised")
	}
	if model.Project == "" {
		return nil, fmt.Errorf("extract: code model has no project unit")
	}

	b := NewGraphBuilder()
	for _, t := range model.Types {
		e.extractType(b, model, t)
	}
	return b.Graph(), nil
}

// extractType emits the containment, inheritance, implementation, and
// member-usage edges for a single type. The scope filter runs independently
// at each emission site because each site tests a different candidate type.
func (e *Extractor) extractType(b *GraphBuilder, model *CodeModel, t *TypeDef) {
	if t == nil || t.Ref == nil {
		return
	}
	id := t.Ref.Identity()

	if enc := t.Ref.Enclosing; e.includeType(model, enc) {
		b.AddEdge(enc.Identity(), id, Contains)
	}

	if t.Kind == KindClass && e.includeType(model, t.Base) {
		b.AddEdge(id, t.Base.Identity(), Inherits)
	}

	for _, iface := range t.Interfaces {
		if e.includeType(model, iface) {
			b.AddEdge(id, iface.Identity(), Implements)
		}
	}

	for _, m := range t.Members {
		e.extractMember(b, model, id, m)
	}
}

// extractMember emits the usage edges of one member. The switch is
// exhaustive over MemberKind; unknown kinds produce nothing.
func (e *Extractor) extractMember(b *GraphBuilder, model *CodeModel, from string, m Member) {
	switch m.Kind {
	case MemberField:
		if e.includeType(model, m.Type) {
			b.AddEdge(from, m.Type.Identity(), FieldUses)
		}
	case MemberProperty:
		if e.includeType(model, m.Type) {
			b.AddEdge(from, m.Type.Identity(), PropertyUses)
		}
	case MemberMethod:
		// Accessor methods are covered by their property's edge.
		if !m.Accessor && e.includeType(model, m.Type) {
			b.AddEdge(from, m.Type.Identity(), MethodReturns)
		}
		for _, p := range m.Params {
			if e.includeType(model, p) {
				b.AddEdge(from, p.Identity(), MethodParameter)
			}
		}
	}
}

// includeType is the scope filter: a candidate produces edges only when it
// resolves to a named, non-builtin type and — in internal scope — belongs
// to the project's own compilation unit. Optional wrappers are unwrapped
// before the test, so a wrapper around X is judged (and recorded) as X.
func (e *Extractor) includeType(model *CodeModel, ref *TypeRef) bool {
	ref = ref.Underlying()
	if ref == nil || ref.Builtin || ref.Name == "" {
		return false
	}
	if e.Scope == ScopeAll {
		return true
	}
	return ref.Unit == model.Project
}
