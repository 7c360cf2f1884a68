package main

import "strings"

// RenderMermaid renders the graph as a Mermaid class diagram. The
// projection is flat and unfiltered: every node is declared, and every
// individual edge occurrence is rendered on its own line — duplicates are
// not aggregated. Identifier escaping matches the PlantUML alias scheme.
func RenderMermaid(g *TypeGraph) string {
	nodes := sortedNodes(g)
	aliases := buildAliases(nodes)

	var sb strings.Builder
	sb.WriteString("classDiagram\n")
	for _, id := range nodes {
		sb.WriteString("    class ")
		sb.WriteString(aliases[id])
		sb.WriteByte('\n')
	}
	for _, e := range g.Edges() {
		sb.WriteString("    ")
		sb.WriteString(mermaidEdge(aliases[e.From], aliases[e.To], e.Kind))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// mermaidEdge mirrors the PlantUML arrow map. Generalization arrows are
// reversed so the arrowhead points at the supertype.
func mermaidEdge(from, to string, kind RelationKind) string {
	switch kind {
	case Inherits:
		return to + " <|-- " + from
	case Implements:
		return to + " <|.. " + from
	case Contains:
		return from + " *-- " + to
	case FieldUses, PropertyUses, MethodReturns, MethodParameter:
		return from + " ..> " + to + " : " + usageLabel(kind)
	default:
		return from + " --> " + to
	}
}
