package main

import (
	"go/types"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Collector builds the language-neutral code model from loaded Go packages
// using static type information.
type Collector struct {
	RootModule string

	// Match optionally restricts which project packages contribute type
	// definitions; nil accepts every project package.
	Match func(pkgPath string) bool
}

// NewCollector creates a Collector scoped to the given root module path.
// The module path becomes the project's compilation unit identity.
func NewCollector(rootModule string) *Collector {
	return &Collector{RootModule: rootModule}
}

// isProjectPackage reports whether pkgPath belongs to the analysed module.
func (c *Collector) isProjectPackage(pkgPath string) bool {
	return pkgPath == c.RootModule || strings.HasPrefix(pkgPath, c.RootModule+"/")
}

// collected pairs a model type with its go/types object for the
// implements pass.
type collected struct {
	def *TypeDef
	typ types.Type
}

// Collect walks all packages and extracts every named type of the module,
// with its members resolved. Types outside the module still appear as
// references (with their own package as unit) but get no TypeDef.
func (c *Collector) Collect(pkgs []*packages.Package) *CodeModel {
	var all []collected

	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		if pkg.Types == nil || !c.isProjectPackage(pkg.PkgPath) {
			return
		}
		if c.Match != nil && !c.Match(pkg.PkgPath) {
			return
		}
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || tn.IsAlias() {
				continue
			}
			named, ok := tn.Type().(*types.Named)
			if !ok {
				continue
			}
			all = append(all, collected{def: c.buildTypeDef(named), typ: named})
		}
	})

	c.collectImplements(all)

	model := &CodeModel{Project: c.RootModule}
	for _, entry := range all {
		model.Types = append(model.Types, entry.def)
	}
	return model
}

// buildTypeDef converts one named type into a model TypeDef, resolving its
// base, fields, and method signatures.
func (c *Collector) buildTypeDef(named *types.Named) *TypeDef {
	def := &TypeDef{Ref: c.typeRefOf(named), Kind: KindClass}

	switch u := named.Underlying().(type) {
	case *types.Interface:
		def.Kind = KindInterface
		// Interface method signatures, including embedded ones.
		for i := 0; i < u.NumMethods(); i++ {
			def.Members = append(def.Members, c.methodMembers(u.Method(i))...)
		}
		return def

	case *types.Struct:
		baseIdx := -1
		for i := 0; i < u.NumFields(); i++ {
			f := u.Field(i)
			// The first embedded named struct acts as the base type;
			// further embedded types stay ordinary field usages.
			if baseIdx < 0 && f.Embedded() && isNamedStruct(f.Type()) {
				def.Base = c.typeRefOf(f.Type())
				baseIdx = i
				continue
			}
			def.Members = append(def.Members, Member{
				Kind: MemberField,
				Name: f.Name(),
				Type: c.typeRefOf(f.Type()),
			})
		}
	}

	for i := 0; i < named.NumMethods(); i++ {
		def.Members = append(def.Members, c.methodMembers(named.Method(i))...)
	}
	return def
}

// methodMembers converts one method into model members. The first result is
// the method's return type; each additional result becomes an extra
// return-only member so every result type is accounted for.
func (c *Collector) methodMembers(m *types.Func) []Member {
	sig, ok := m.Type().(*types.Signature)
	if !ok {
		return nil
	}
	member := Member{Kind: MemberMethod, Name: m.Name()}
	for i := 0; i < sig.Params().Len(); i++ {
		member.Params = append(member.Params, c.typeRefOf(sig.Params().At(i).Type()))
	}
	if sig.Results().Len() > 0 {
		member.Type = c.typeRefOf(sig.Results().At(0).Type())
	}
	members := []Member{member}
	for i := 1; i < sig.Results().Len(); i++ {
		members = append(members, Member{
			Kind: MemberMethod,
			Name: m.Name(),
			Type: c.typeRefOf(sig.Results().At(i).Type()),
		})
	}
	return members
}

// collectImplements fills each type's interface list by checking every
// collected type against every collected non-empty interface, retrying
// with the pointer receiver form for concrete types.
func (c *Collector) collectImplements(all []collected) {
	type ifaceEntry struct {
		def *TypeDef
		typ *types.Interface
	}
	var ifaces []ifaceEntry
	for _, entry := range all {
		if it, ok := entry.typ.Underlying().(*types.Interface); ok && it.NumMethods() > 0 {
			ifaces = append(ifaces, ifaceEntry{def: entry.def, typ: it})
		}
	}

	for _, entry := range all {
		for _, iface := range ifaces {
			if iface.def == entry.def {
				continue
			}
			ok := types.Implements(entry.typ, iface.typ)
			if !ok && entry.def.Kind == KindClass {
				ok = types.Implements(types.NewPointer(entry.typ), iface.typ)
			}
			if ok {
				entry.def.Interfaces = append(entry.def.Interfaces, iface.def.Ref)
			}
		}
	}
}

// typeRefOf converts a go/types type into a model reference. Pointers map
// to optional wrappers; slices and arrays collapse to their element type;
// maps, channels, funcs, and anonymous composites are treated as built-ins
// and never produce edges.
func (c *Collector) typeRefOf(t types.Type) *TypeRef {
	switch t := t.(type) {
	case *types.Pointer:
		return &TypeRef{Elem: c.typeRefOf(t.Elem())}
	case *types.Slice:
		return c.typeRefOf(t.Elem())
	case *types.Array:
		return c.typeRefOf(t.Elem())
	case *types.Alias:
		return c.typeRefOf(types.Unalias(t))
	case *types.Named:
		obj := t.Obj()
		if obj.Pkg() == nil {
			// Universe types such as error.
			return &TypeRef{Name: obj.Name(), Builtin: true}
		}
		ref := &TypeRef{
			Name:    obj.Name(),
			Package: obj.Pkg().Path(),
			Unit:    c.unitOf(obj.Pkg().Path()),
		}
		if args := t.TypeArgs(); args != nil && args.Len() > 0 {
			for i := 0; i < args.Len(); i++ {
				ref.TypeArgs = append(ref.TypeArgs, c.typeRefOf(args.At(i)))
			}
		} else if params := t.TypeParams(); params != nil {
			// Generic definition: keep the open parameters so the
			// definition and in-package references share one identity.
			for i := 0; i < params.Len(); i++ {
				ref.TypeArgs = append(ref.TypeArgs, c.typeRefOf(params.At(i)))
			}
		}
		return ref
	case *types.Basic:
		return &TypeRef{Name: t.Name(), Builtin: true}
	case *types.TypeParam:
		return &TypeRef{Name: t.Obj().Name(), Builtin: true}
	default:
		return &TypeRef{Name: t.String(), Builtin: true}
	}
}

// unitOf maps a package path to its compilation unit: the root module for
// project packages, the package path itself for external ones.
func (c *Collector) unitOf(pkgPath string) string {
	if c.isProjectPackage(pkgPath) {
		return c.RootModule
	}
	return pkgPath
}

// isNamedStruct reports whether t (possibly behind a pointer) is a named
// type whose underlying type is a struct.
func isNamedStruct(t types.Type) bool {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return false
	}
	_, ok = named.Underlying().(*types.Struct)
	return ok
}
