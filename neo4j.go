package main

import (
	"context"
	"fmt"
	"log"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jExporter loads a completed type graph into a Neo4j database using
// batch UNWIND queries.
type Neo4jExporter struct {
	driver neo4j.DriverWithContext
	ctx    context.Context
}

// NewNeo4jExporter connects to Neo4j and returns a ready-to-use exporter.
func NewNeo4jExporter(ctx context.Context, uri, user, password string) (*Neo4jExporter, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	return &Neo4jExporter{driver: driver, ctx: ctx}, nil
}

// Close releases the underlying Neo4j driver resources.
func (e *Neo4jExporter) Close() {
	e.driver.Close(e.ctx)
}

// runCypher runs a single Cypher statement with optional parameters.
func (e *Neo4jExporter) runCypher(cypher string, params map[string]any) error {
	_, err := neo4j.ExecuteQuery(e.ctx, e.driver, cypher, params, neo4j.EagerResultTransformer)
	return err
}

// relTypeNames maps each relation kind to its Neo4j relationship type.
var relTypeNames = map[RelationKind]string{
	Inherits:        "INHERITS",
	Implements:      "IMPLEMENTS",
	FieldUses:       "FIELD_USES",
	PropertyUses:    "PROPERTY_USES",
	MethodReturns:   "METHOD_RETURNS",
	MethodParameter: "METHOD_PARAMETER",
	Contains:        "CONTAINS",
}

// CleanGraph removes all previously loaded type-graph nodes and
// relationships.
func (e *Neo4jExporter) CleanGraph() error {
	log.Println("Cleaning existing type graph data...")
	queries := make([]string, 0, len(relTypeNames)+1)
	for _, kind := range AllRelationKinds {
		queries = append(queries, fmt.Sprintf("MATCH ()-[r:%s]->() DELETE r", relTypeNames[kind]))
	}
	queries = append(queries, "MATCH (n:CodeType) DETACH DELETE n")
	for _, q := range queries {
		if err := e.runCypher(q, nil); err != nil {
			return err
		}
	}
	return nil
}

// CreateIndexes ensures the required Neo4j indexes exist.
func (e *Neo4jExporter) CreateIndexes() error {
	log.Println("Creating indexes...")
	return e.runCypher(
		"CREATE INDEX code_type_identity IF NOT EXISTS FOR (n:CodeType) ON (n.identity)",
		nil,
	)
}

// ExportGraph upserts CodeType nodes and one relationship per distinct
// (from, to, kind) edge, carrying the aggregated occurrence count.
func (e *Neo4jExporter) ExportGraph(g *TypeGraph) error {
	nodes := g.Nodes()
	log.Printf("Loading %d type nodes...", len(nodes))
	batch := make([]map[string]any, 0, len(nodes))
	for _, id := range nodes {
		batch = append(batch, map[string]any{"identity": id})
	}
	err := e.runCypher(
		`UNWIND $batch AS row
		 MERGE (n:CodeType {identity: row.identity})`,
		map[string]any{"batch": batch},
	)
	if err != nil {
		return err
	}

	// The relationship type cannot be parameterised, so edges are batched
	// per kind.
	byKind := make(map[RelationKind][]map[string]any)
	for _, ce := range g.CountedEdges() {
		byKind[ce.Kind] = append(byKind[ce.Kind], map[string]any{
			"from":  ce.From,
			"to":    ce.To,
			"count": ce.Count,
		})
	}
	for _, kind := range AllRelationKinds {
		rows := byKind[kind]
		if len(rows) == 0 {
			continue
		}
		log.Printf("Loading %d %s edges...", len(rows), kind)
		query := fmt.Sprintf(
			`UNWIND $batch AS row
			 MATCH (a:CodeType {identity: row.from}), (b:CodeType {identity: row.to})
			 MERGE (a)-[r:%s]->(b)
			 SET r.count = row.count`,
			relTypeNames[kind],
		)
		if err := e.runCypher(query, map[string]any{"batch": rows}); err != nil {
			return err
		}
	}
	return nil
}
