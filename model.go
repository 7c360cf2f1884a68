package main

import "strings"

// TypeKind distinguishes concrete types from interfaces in the code model.
type TypeKind int

const (
	// KindClass covers classes and structs — anything that can inherit.
	KindClass TypeKind = iota
	// KindInterface covers interface types.
	KindInterface
)

// TypeRef is a resolved reference to a type as seen from a declaration or
// member signature. An optional/pointer wrapper is represented by a ref
// whose Elem points at the wrapped type; Underlying strips such wrappers.
type TypeRef struct {
	Name      string     // simple type name
	Package   string     // namespace / package path, empty for built-ins
	Unit      string     // owning compilation unit (module path for project types)
	Builtin   bool       // language primitive or special type, never a node
	Enclosing *TypeRef   // enclosing type for nested declarations
	TypeArgs  []*TypeRef // generic type arguments, including open parameters
	Elem      *TypeRef   // non-nil when this ref is an optional/pointer wrapper
}

// Underlying returns the ref with optional/pointer wrappers stripped.
func (r *TypeRef) Underlying() *TypeRef {
	for r != nil && r.Elem != nil {
		r = r.Elem
	}
	return r
}

// Identity returns the canonical display string for the referenced type:
// package path, enclosing-type chain, simple name, and generic arguments.
// Two references to the same type always produce the same string; the
// string doubles as the graph node key.
func (r *TypeRef) Identity() string {
	r = r.Underlying()
	var sb strings.Builder
	switch {
	case r.Enclosing != nil:
		sb.WriteString(r.Enclosing.Identity())
		sb.WriteByte('.')
	case r.Package != "":
		sb.WriteString(r.Package)
		sb.WriteByte('.')
	}
	sb.WriteString(r.Name)
	if len(r.TypeArgs) > 0 {
		sb.WriteByte('<')
		for i, arg := range r.TypeArgs {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(arg.Identity())
		}
		sb.WriteByte('>')
	}
	return sb.String()
}

// MemberKind classifies the members a type can declare.
type MemberKind int

const (
	MemberField MemberKind = iota
	MemberProperty
	MemberMethod
)

// Member is one field, property, or method of a type.
type Member struct {
	Kind MemberKind
	Name string

	// Type is the field or property type, or the method return type.
	// Nil for methods returning nothing.
	Type *TypeRef

	// Params holds the parameter types of a method; nil otherwise.
	Params []*TypeRef

	// Accessor marks property accessor methods, whose return type is
	// already covered by the property itself.
	Accessor bool
}

// TypeDef is one named type discovered in the analysed project, flattened
// out of any nested-type declarations.
type TypeDef struct {
	Ref        *TypeRef // self reference, carries identity and enclosing chain
	Kind       TypeKind
	Base       *TypeRef   // explicit base type; nil when none or the implicit root
	Interfaces []*TypeRef // implemented interfaces, direct and transitive
	Members    []Member
}

// CodeModel is the resolved symbol-level view of one project, produced by a
// frontend (the go/packages collector here, or fixtures in tests) and
// consumed by the extractor.
type CodeModel struct {
	// Project is the identity of the project's own compilation unit; refs
	// whose Unit equals Project are "internal" for the scope filter.
	Project string
	Types   []*TypeDef
}
