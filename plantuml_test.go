package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioGraph(t *testing.T) *TypeGraph {
	t.Helper()
	aRef := typeRef("A")
	innerRef := &TypeRef{Name: "Inner", Enclosing: aRef, Unit: "demo"}
	return extractOne(t,
		&TypeDef{
			Ref:     aRef,
			Kind:    KindClass,
			Base:    typeRef("Base"),
			Members: []Member{{Kind: MemberField, Name: "u", Type: typeRef("Used")}},
		},
		&TypeDef{Ref: innerRef, Kind: KindClass},
		&TypeDef{Ref: typeRef("Base"), Kind: KindClass},
		&TypeDef{Ref: typeRef("Used"), Kind: KindClass},
	)
}

func TestRenderPlantUMLScenario(t *testing.T) {
	got := RenderPlantUML(scenarioGraph(t), PlantUMLOptions{})

	want := `@startuml
class "demo.A" as demo_A
class "A.Inner" as demo_A_Inner
class "demo.Base" as demo_Base
class "demo.Used" as demo_Used
demo_A *-- demo_A_Inner
demo_Base <|-- demo_A
demo_A ..> demo_Used : field
@enduml
`
	assert.Equal(t, want, got)
}

func TestRenderPlantUMLDeterministic(t *testing.T) {
	g := scenarioGraph(t)
	opts := PlantUMLOptions{AnnotateCounts: true}
	assert.Equal(t, RenderPlantUML(g, opts), RenderPlantUML(g, opts))
}

func TestRenderPlantUMLKindFilter(t *testing.T) {
	got := RenderPlantUML(scenarioGraph(t), PlantUMLOptions{
		Kinds: map[RelationKind]bool{Inherits: true},
	})
	assert.Contains(t, got, "demo_Base <|-- demo_A")
	assert.NotContains(t, got, "*--")
	assert.NotContains(t, got, "..>")
	// Filtering edges never drops node declarations.
	assert.Contains(t, got, `class "demo.Used" as demo_Used`)
}

func TestRenderPlantUMLCountAnnotationThreshold(t *testing.T) {
	b := NewGraphBuilder()
	b.AddEdge("demo.A", "demo.B", FieldUses)
	b.AddEdge("demo.C", "demo.D", MethodParameter)
	b.AddEdge("demo.C", "demo.D", MethodParameter)
	b.AddEdge("demo.C", "demo.E", Inherits)
	b.AddEdge("demo.C", "demo.E", Inherits)
	g := b.Graph()

	got := RenderPlantUML(g, PlantUMLOptions{AnnotateCounts: true})
	assert.Contains(t, got, "demo_A ..> demo_B : field\n")
	assert.Contains(t, got, "demo_C ..> demo_D : param ×2\n")
	// Structural edges never show counts.
	assert.Contains(t, got, "demo_E <|-- demo_C\n")
	assert.NotContains(t, got, "<|-- demo_C ×")

	// Without the flag the count stays hidden.
	got = RenderPlantUML(g, PlantUMLOptions{})
	assert.NotContains(t, got, "×")
}

func TestRenderPlantUMLGrouping(t *testing.T) {
	b := NewGraphBuilder()
	b.AddEdge("app/core.A", "app/core.B", Inherits)
	b.AddEdge("app/core.A", "app/util.C", FieldUses)
	b.AddEdge("app/core.A", "ungrouped.D", FieldUses)
	g := b.Graph()

	groupOf := func(id string) (string, bool) {
		ns := namespaceOf(id)
		if strings.HasPrefix(ns, "app/") {
			return ns, true
		}
		return "", false
	}
	got := RenderPlantUML(g, PlantUMLOptions{GroupOf: groupOf})

	assert.Contains(t, got, "package \"app/core\" {\n  class \"app/core.A\" as app_core_A\n  class \"app/core.B\" as app_core_B\n}\n")
	assert.Contains(t, got, "package \"app/util\" {\n  class \"app/util.C\" as app_util_C\n}\n")
	// Ungrouped nodes are still declared, flat.
	assert.Contains(t, got, "\nclass \"ungrouped.D\" as ungrouped_D\n")
}

func TestRenderPlantUMLEmptyGraph(t *testing.T) {
	got := RenderPlantUML(NewGraphBuilder().Graph(), PlantUMLOptions{})
	assert.Equal(t, "@startuml\n@enduml\n", got)
}

func TestBuildAliasesInjective(t *testing.T) {
	aliases := buildAliases([]string{"pkg.A<B>", "pkg.A B", "pkg.A_B_"})
	assert.Equal(t, "pkg_A_B_", aliases["pkg.A<B>"])
	assert.Equal(t, "pkg_A_B", aliases["pkg.A B"])
	assert.Equal(t, "pkg_A_B__2", aliases["pkg.A_B_"])

	seen := make(map[string]bool)
	for _, alias := range aliases {
		require.False(t, seen[alias], "alias %q assigned twice", alias)
		seen[alias] = true
	}
}

func TestDefaultShortName(t *testing.T) {
	assert.Equal(t, "Core.Widget", DefaultShortName("My.App.Core.Widget"))
	assert.Equal(t, "demo.A", DefaultShortName("demo.A"))
	assert.Equal(t, "A", DefaultShortName("A"))
}

func TestRenderGroupOverviewAggregates(t *testing.T) {
	b := NewGraphBuilder()
	b.AddEdge("alpha.A", "beta.B", FieldUses)
	b.AddEdge("alpha.A", "beta.B", FieldUses)
	b.AddEdge("alpha.C", "beta.B", MethodParameter)
	b.AddEdge("alpha.A", "alpha.C", FieldUses) // same group, dropped
	b.AddEdge("alpha.A", "beta.B", Inherits)   // structural, dropped by default
	g := b.Graph()

	groupOf := func(id string) (string, bool) {
		return namespaceOf(id), namespaceOf(id) != ""
	}
	got := RenderGroupOverview(g, groupOf, OverviewOptions{})

	want := `@startuml
rectangle "alpha" as alpha
rectangle "beta" as beta
alpha --> beta : 3
@enduml
`
	assert.Equal(t, want, got)
}

func TestRenderGroupOverviewByKind(t *testing.T) {
	b := NewGraphBuilder()
	b.AddEdge("alpha.A", "beta.B", Inherits)
	b.AddEdge("alpha.C", "beta.B", Inherits)
	b.AddEdge("alpha.A", "beta.B", FieldUses)
	g := b.Graph()

	groupOf := func(id string) (string, bool) {
		return namespaceOf(id), true
	}
	got := RenderGroupOverview(g, groupOf, OverviewOptions{
		Kinds: map[RelationKind]bool{Inherits: true, FieldUses: true},
	})
	assert.Contains(t, got, "alpha --> beta : inherits 2\n")
	assert.Contains(t, got, "alpha --> beta : field-uses 1\n")
}

func TestRenderGroupOverviewEmptyGraph(t *testing.T) {
	got := RenderGroupOverview(NewGraphBuilder().Graph(), func(string) (string, bool) {
		return "", false
	}, OverviewOptions{})
	assert.Equal(t, "@startuml\n@enduml\n", got)
}
