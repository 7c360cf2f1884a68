package main

// RelationKind classifies the structural relationship between two types.
type RelationKind int

const (
	// Inherits: From derives from base class To.
	Inherits RelationKind = iota
	// Implements: From implements interface To.
	Implements
	// FieldUses: From has a field of type To.
	FieldUses
	// PropertyUses: From has a property of type To.
	PropertyUses
	// MethodReturns: a method of From returns To.
	MethodReturns
	// MethodParameter: a method of From takes a parameter of type To.
	MethodParameter
	// Contains: From lexically encloses nested type To.
	Contains
)

// AllRelationKinds lists every kind, in declaration order.
var AllRelationKinds = []RelationKind{
	Inherits, Implements, FieldUses, PropertyUses,
	MethodReturns, MethodParameter, Contains,
}

// String returns the lowercase name used in config files and CLI flags.
func (k RelationKind) String() string {
	switch k {
	case Inherits:
		return "inherits"
	case Implements:
		return "implements"
	case FieldUses:
		return "field-uses"
	case PropertyUses:
		return "property-uses"
	case MethodReturns:
		return "method-returns"
	case MethodParameter:
		return "method-parameter"
	case Contains:
		return "contains"
	default:
		return "unknown"
	}
}

// IsUsage reports whether the kind is one of the four member-usage kinds,
// as opposed to the structural kinds (Inherits, Implements, Contains).
func (k RelationKind) IsUsage() bool {
	switch k {
	case FieldUses, PropertyUses, MethodReturns, MethodParameter:
		return true
	}
	return false
}

// Relation is a directed, typed edge between two type identities.
// Two relations denote the same edge iff From, To, and Kind all match.
type Relation struct {
	From string
	To   string
	Kind RelationKind
}

// CountedRelation pairs a distinct relation key with the number of times
// it was observed during extraction.
type CountedRelation struct {
	Relation
	Count int
}

// GraphBuilder accumulates relations during a single extraction pass.
// It is not safe for concurrent use; build the graph from one goroutine,
// then call Graph and hand the snapshot to any number of readers.
type GraphBuilder struct {
	nodes  map[string]struct{}
	counts map[Relation]int
	order  []Relation // distinct keys in first-insertion order
	edges  []Relation // every recorded occurrence, in order
}

// NewGraphBuilder returns an empty builder.
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{
		nodes:  make(map[string]struct{}),
		counts: make(map[Relation]int),
	}
}

// AddEdge records one occurrence of the (from, to, kind) relation.
// Self-referential edges are dropped: a type enclosing itself or a member
// typed as its own declaring type never produces an edge. Both endpoints
// are registered as nodes; repeating the same triple increments its count
// instead of duplicating the edge.
func (b *GraphBuilder) AddEdge(from, to string, kind RelationKind) {
	if from == to {
		return
	}
	b.nodes[from] = struct{}{}
	b.nodes[to] = struct{}{}

	rel := Relation{From: from, To: to, Kind: kind}
	if _, seen := b.counts[rel]; !seen {
		b.order = append(b.order, rel)
	}
	b.counts[rel]++
	b.edges = append(b.edges, rel)
}

// Graph returns an immutable snapshot of everything recorded so far.
// Later AddEdge calls do not affect snapshots already taken.
func (b *GraphBuilder) Graph() *TypeGraph {
	g := &TypeGraph{
		nodes:   make(map[string]struct{}, len(b.nodes)),
		counted: make([]CountedRelation, 0, len(b.order)),
		edges:   make([]Relation, len(b.edges)),
	}
	for id := range b.nodes {
		g.nodes[id] = struct{}{}
	}
	for _, rel := range b.order {
		g.counted = append(g.counted, CountedRelation{Relation: rel, Count: b.counts[rel]})
	}
	copy(g.edges, b.edges)
	return g
}

// TypeGraph is the completed, read-only relation graph handed to renderers
// and exporters. All accessors return copies; concurrent reads are safe.
type TypeGraph struct {
	nodes   map[string]struct{}
	counted []CountedRelation
	edges   []Relation
}

// Nodes returns every identity that appeared as an edge endpoint,
// in no guaranteed order. Callers needing determinism must sort.
func (g *TypeGraph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	return out
}

// HasNode reports whether the identity appeared as an edge endpoint.
func (g *TypeGraph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// CountedEdges returns each distinct (from, to, kind) key with its
// accumulated occurrence count, in first-insertion order.
func (g *TypeGraph) CountedEdges() []CountedRelation {
	out := make([]CountedRelation, len(g.counted))
	copy(out, g.counted)
	return out
}

// Edges returns every individual edge occurrence, in insertion order.
// Unlike CountedEdges, repeats of the same triple appear once per occurrence.
func (g *TypeGraph) Edges() []Relation {
	out := make([]Relation, len(g.edges))
	copy(out, g.edges)
	return out
}
