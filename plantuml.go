package main

import (
	"fmt"
	"sort"
	"strings"
)

// PlantUMLOptions configures the class-diagram rendering of a type graph.
// The zero value renders every kind, flat, with default short names and no
// count annotations.
type PlantUMLOptions struct {
	// Kinds filters the rendered edges; nil means all kinds.
	Kinds map[RelationKind]bool

	// ShortName maps an identity to its display name. Nil uses the last
	// two dot-separated segments of the identity.
	ShortName func(id string) string

	// GroupOf clusters nodes into named package blocks. Nil disables
	// grouping; nodes it declines are still declared, just ungrouped.
	GroupOf func(id string) (string, bool)

	// AnnotateCounts appends the occurrence count to usage-edge labels
	// when the aggregated count exceeds 1. Structural edges never show
	// counts.
	AnnotateCounts bool
}

// DefaultShortName keeps the last two dot-separated segments of an
// identity, which for a dotted namespace yields "Namespace.Type".
func DefaultShortName(id string) string {
	parts := strings.Split(id, ".")
	if len(parts) <= 2 {
		return id
	}
	return strings.Join(parts[len(parts)-2:], ".")
}

// RenderPlantUML renders the graph as a PlantUML class diagram. It never
// fails: an empty graph yields a minimal @startuml/@enduml document.
// Output is deterministic for a given graph and options.
func RenderPlantUML(g *TypeGraph, opts PlantUMLOptions) string {
	shortName := opts.ShortName
	if shortName == nil {
		shortName = DefaultShortName
	}

	nodes := sortedNodes(g)
	aliases := buildAliases(nodes)

	var sb strings.Builder
	sb.WriteString("@startuml\n")

	declare := func(indent, id string) {
		fmt.Fprintf(&sb, "%sclass \"%s\" as %s\n", indent, shortName(id), aliases[id])
	}

	if opts.GroupOf != nil {
		groups := make(map[string][]string)
		var ungrouped []string
		for _, id := range nodes {
			if label, ok := opts.GroupOf(id); ok {
				groups[label] = append(groups[label], id)
			} else {
				ungrouped = append(ungrouped, id)
			}
		}
		for _, label := range sortedKeys(groups) {
			fmt.Fprintf(&sb, "package \"%s\" {\n", label)
			for _, id := range groups[label] {
				declare("  ", id)
			}
			sb.WriteString("}\n")
		}
		for _, id := range ungrouped {
			declare("", id)
		}
	} else {
		for _, id := range nodes {
			declare("", id)
		}
	}

	for _, ce := range sortedCountedEdges(g) {
		if opts.Kinds != nil && !opts.Kinds[ce.Kind] {
			continue
		}
		sb.WriteString(plantumlEdge(aliases[ce.From], aliases[ce.To], ce.Kind, ce.Count, opts.AnnotateCounts))
		sb.WriteByte('\n')
	}

	sb.WriteString("@enduml\n")
	return sb.String()
}

// plantumlEdge renders one relation line using the fixed kind→arrow map.
// Generalization arrows point at the supertype, so the target goes left.
func plantumlEdge(from, to string, kind RelationKind, count int, annotate bool) string {
	switch kind {
	case Inherits:
		return to + " <|-- " + from
	case Implements:
		return to + " <|.. " + from
	case Contains:
		return from + " *-- " + to
	case FieldUses, PropertyUses, MethodReturns, MethodParameter:
		label := usageLabel(kind)
		if annotate && count > 1 {
			label = fmt.Sprintf("%s ×%d", label, count)
		}
		return from + " ..> " + to + " : " + label
	default:
		return from + " --> " + to
	}
}

// usageLabel returns the arrow label for a usage kind.
func usageLabel(kind RelationKind) string {
	switch kind {
	case FieldUses:
		return "field"
	case PropertyUses:
		return "property"
	case MethodReturns:
		return "returns"
	case MethodParameter:
		return "param"
	default:
		return ""
	}
}

// OverviewOptions configures the inter-group overview projection.
type OverviewOptions struct {
	// Kinds filters the aggregated edges. Nil keeps only the four usage
	// kinds and collapses them into a single count per group pair; a
	// non-nil set keeps the kind in the aggregation key and label.
	Kinds map[RelationKind]bool
}

// RenderGroupOverview collapses every node into its group label and renders
// one box per group plus one summary arrow per (from-group, to-group[,
// kind]) pair, annotated with the total occurrence count across all
// underlying edges. Self-group edges and nodes without a group are dropped.
func RenderGroupOverview(g *TypeGraph, groupOf func(id string) (string, bool), opts OverviewOptions) string {
	type groupEdge struct {
		from, to string
		kind     RelationKind
	}
	byKind := opts.Kinds != nil

	totals := make(map[groupEdge]int)
	groups := make(map[string]struct{})

	for _, id := range g.Nodes() {
		if label, ok := groupOf(id); ok {
			groups[label] = struct{}{}
		}
	}
	for _, ce := range g.CountedEdges() {
		if byKind {
			if !opts.Kinds[ce.Kind] {
				continue
			}
		} else if !ce.Kind.IsUsage() {
			continue
		}
		fromGroup, ok := groupOf(ce.From)
		if !ok {
			continue
		}
		toGroup, ok := groupOf(ce.To)
		if !ok || fromGroup == toGroup {
			continue
		}
		key := groupEdge{from: fromGroup, to: toGroup}
		if byKind {
			key.kind = ce.Kind
		}
		totals[key] += ce.Count
	}

	labels := sortedKeys(groups)
	aliases := buildAliases(labels)

	var sb strings.Builder
	sb.WriteString("@startuml\n")
	for _, label := range labels {
		fmt.Fprintf(&sb, "rectangle \"%s\" as %s\n", label, aliases[label])
	}

	keys := make([]groupEdge, 0, len(totals))
	for key := range totals {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].from != keys[j].from {
			return keys[i].from < keys[j].from
		}
		if keys[i].to != keys[j].to {
			return keys[i].to < keys[j].to
		}
		return keys[i].kind < keys[j].kind
	})
	for _, key := range keys {
		if byKind {
			fmt.Fprintf(&sb, "%s --> %s : %s %d\n", aliases[key.from], aliases[key.to], key.kind, totals[key])
		} else {
			fmt.Fprintf(&sb, "%s --> %s : %d\n", aliases[key.from], aliases[key.to], totals[key])
		}
	}
	sb.WriteString("@enduml\n")
	return sb.String()
}

// aliasReplacer rewrites the characters PlantUML and Mermaid reject in
// identifiers. The slash and dash cases cover Go package paths.
var aliasReplacer = strings.NewReplacer(
	"<", "_", ">", "_", ".", "_", "+", "_", ",", "_", " ", "_",
	"/", "_", "-", "_",
)

// buildAliases assigns each identity a syntactic alias, keeping the mapping
// injective: sanitized names that collide get a numeric suffix.
func buildAliases(ids []string) map[string]string {
	aliases := make(map[string]string, len(ids))
	used := make(map[string]bool, len(ids))
	for _, id := range ids {
		alias := aliasReplacer.Replace(id)
		if used[alias] {
			base := alias
			for n := 2; used[alias]; n++ {
				alias = fmt.Sprintf("%s_%d", base, n)
			}
		}
		used[alias] = true
		aliases[id] = alias
	}
	return aliases
}

// sortedNodes returns the graph's nodes in lexicographic order.
func sortedNodes(g *TypeGraph) []string {
	nodes := g.Nodes()
	sort.Strings(nodes)
	return nodes
}

// sortedCountedEdges returns the counted edges ordered by (from, to, kind).
func sortedCountedEdges(g *TypeGraph) []CountedRelation {
	edges := g.CountedEdges()
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		if edges[i].To != edges[j].To {
			return edges[i].To < edges[j].To
		}
		return edges[i].Kind < edges[j].Kind
	})
	return edges
}

// sortedKeys returns the keys of a string-keyed map in sorted order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
