package main

import (
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModule = "example.com/app"

func newTestCollector() *Collector {
	return NewCollector(testModule)
}

func newNamed(pkg *types.Package, name string, underlying types.Type) *types.Named {
	return types.NewNamed(types.NewTypeName(token.NoPos, pkg, name, nil), underlying, nil)
}

func TestIsProjectPackage(t *testing.T) {
	c := newTestCollector()
	assert.True(t, c.isProjectPackage("example.com/app"))
	assert.True(t, c.isProjectPackage("example.com/app/core"))
	assert.False(t, c.isProjectPackage("example.com/application"))
	assert.False(t, c.isProjectPackage("github.com/other/mod"))
}

func TestTypeRefOf(t *testing.T) {
	c := newTestCollector()
	core := types.NewPackage("example.com/app/core", "core")
	ext := types.NewPackage("github.com/other/mod", "mod")

	used := newNamed(core, "Used", types.NewStruct(nil, nil))
	conn := newNamed(ext, "Conn", types.NewStruct(nil, nil))

	t.Run("project named type", func(t *testing.T) {
		ref := c.typeRefOf(used)
		assert.Equal(t, "example.com/app/core.Used", ref.Identity())
		assert.Equal(t, testModule, ref.Unit)
		assert.False(t, ref.Builtin)
	})

	t.Run("external named type", func(t *testing.T) {
		ref := c.typeRefOf(conn)
		assert.Equal(t, "github.com/other/mod", ref.Unit)
	})

	t.Run("pointer becomes optional wrapper", func(t *testing.T) {
		ref := c.typeRefOf(types.NewPointer(used))
		require.NotNil(t, ref.Elem)
		assert.Equal(t, "example.com/app/core.Used", ref.Identity())
	})

	t.Run("slice collapses to element", func(t *testing.T) {
		ref := c.typeRefOf(types.NewSlice(used))
		assert.Nil(t, ref.Elem)
		assert.Equal(t, "example.com/app/core.Used", ref.Identity())
	})

	t.Run("basic type is builtin", func(t *testing.T) {
		ref := c.typeRefOf(types.Typ[types.Int])
		assert.True(t, ref.Builtin)
	})

	t.Run("universe error is builtin", func(t *testing.T) {
		ref := c.typeRefOf(types.Universe.Lookup("error").Type())
		assert.True(t, ref.Builtin)
	})

	t.Run("map is builtin", func(t *testing.T) {
		ref := c.typeRefOf(types.NewMap(types.Typ[types.String], used))
		assert.True(t, ref.Builtin)
	})
}

func TestBuildTypeDefStruct(t *testing.T) {
	c := newTestCollector()
	core := types.NewPackage("example.com/app/core", "core")

	base := newNamed(core, "Base", types.NewStruct(nil, nil))
	used := newNamed(core, "Used", types.NewStruct(nil, nil))

	fields := []*types.Var{
		types.NewField(token.NoPos, core, "Base", base, true),
		types.NewField(token.NoPos, core, "u", used, false),
		types.NewField(token.NoPos, core, "n", types.Typ[types.Int], false),
	}
	a := newNamed(core, "A", types.NewStruct(fields, nil))

	sig := types.NewSignatureType(
		types.NewVar(token.NoPos, core, "", a), nil, nil,
		types.NewTuple(types.NewParam(token.NoPos, core, "u", used)),
		types.NewTuple(
			types.NewVar(token.NoPos, core, "", used),
			types.NewVar(token.NoPos, core, "", types.Universe.Lookup("error").Type()),
		),
		false,
	)
	a.AddMethod(types.NewFunc(token.NoPos, core, "Resolve", sig))

	def := c.buildTypeDef(a)
	assert.Equal(t, KindClass, def.Kind)
	assert.Equal(t, "example.com/app/core.A", def.Ref.Identity())

	// The embedded struct becomes the base, not a field.
	require.NotNil(t, def.Base)
	assert.Equal(t, "example.com/app/core.Base", def.Base.Identity())

	var fieldNames []string
	for _, m := range def.Members {
		if m.Kind == MemberField {
			fieldNames = append(fieldNames, m.Name)
		}
	}
	assert.Equal(t, []string{"u", "n"}, fieldNames)

	// One member per method plus one per extra result.
	var methods []Member
	for _, m := range def.Members {
		if m.Kind == MemberMethod {
			methods = append(methods, m)
		}
	}
	require.Len(t, methods, 2)
	assert.Equal(t, "example.com/app/core.Used", methods[0].Type.Identity())
	require.Len(t, methods[0].Params, 1)
	assert.True(t, methods[1].Type.Builtin) // the trailing error result
}

func TestBuildTypeDefInterface(t *testing.T) {
	c := newTestCollector()
	core := types.NewPackage("example.com/app/core", "core")
	used := newNamed(core, "Used", types.NewStruct(nil, nil))

	readSig := types.NewSignatureType(nil, nil, nil, nil,
		types.NewTuple(types.NewVar(token.NoPos, core, "", used)), false)
	iface := types.NewInterfaceType([]*types.Func{
		types.NewFunc(token.NoPos, core, "Read", readSig),
	}, nil)
	iface.Complete()
	reader := newNamed(core, "Reader", iface)

	def := c.buildTypeDef(reader)
	assert.Equal(t, KindInterface, def.Kind)
	require.Len(t, def.Members, 1)
	assert.Equal(t, MemberMethod, def.Members[0].Kind)
	assert.Equal(t, "example.com/app/core.Used", def.Members[0].Type.Identity())
}

func TestCollectImplements(t *testing.T) {
	c := newTestCollector()
	core := types.NewPackage("example.com/app/core", "core")

	readSig := types.NewSignatureType(nil, nil, nil, nil,
		types.NewTuple(types.NewVar(token.NoPos, core, "", types.Typ[types.Int])), false)
	iface := types.NewInterfaceType([]*types.Func{
		types.NewFunc(token.NoPos, core, "Read", readSig),
	}, nil)
	iface.Complete()
	reader := newNamed(core, "Reader", iface)

	store := newNamed(core, "Store", types.NewStruct(nil, nil))
	storeSig := types.NewSignatureType(
		types.NewVar(token.NoPos, core, "", store), nil, nil, nil,
		types.NewTuple(types.NewVar(token.NoPos, core, "", types.Typ[types.Int])), false)
	store.AddMethod(types.NewFunc(token.NoPos, core, "Read", storeSig))

	other := newNamed(core, "Other", types.NewStruct(nil, nil))

	all := []collected{
		{def: c.buildTypeDef(store), typ: store},
		{def: c.buildTypeDef(reader), typ: reader},
		{def: c.buildTypeDef(other), typ: other},
	}
	c.collectImplements(all)

	require.Len(t, all[0].def.Interfaces, 1)
	assert.Equal(t, "example.com/app/core.Reader", all[0].def.Interfaces[0].Identity())
	assert.Empty(t, all[1].def.Interfaces) // an interface does not implement itself
	assert.Empty(t, all[2].def.Interfaces)
}

func TestIsNamedStruct(t *testing.T) {
	core := types.NewPackage("example.com/app/core", "core")
	base := newNamed(core, "Base", types.NewStruct(nil, nil))

	readSig := types.NewSignatureType(nil, nil, nil, nil, nil, false)
	iface := types.NewInterfaceType([]*types.Func{
		types.NewFunc(token.NoPos, core, "Read", readSig),
	}, nil)
	iface.Complete()
	reader := newNamed(core, "Reader", iface)

	assert.True(t, isNamedStruct(base))
	assert.True(t, isNamedStruct(types.NewPointer(base)))
	assert.False(t, isNamedStruct(reader))
	assert.False(t, isNamedStruct(types.Typ[types.Int]))
}
