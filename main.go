package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"
)

func main() {
	var (
		dir        = flag.String("dir", ".", "Project root directory")
		configPath = flag.String("config", "", "Path to a typegraph.yaml config file")
		pkgPats    = flag.String("pkg", "", "Comma-separated package patterns to analyse (doublestar)")
		scope      = flag.String("scope", "", "Type scope: internal (default) or all")
		kinds      = flag.String("kinds", "", "Comma-separated relation kinds to render")
		outPuml    = flag.String("out", "", "PlantUML output path")
		outMmd     = flag.String("mermaid", "", "Mermaid output path")
		outOver    = flag.String("overview", "", "Inter-group overview output path")
		groupPkg   = flag.Bool("group-by-package", false, "Group diagram nodes by package")
		counts     = flag.Bool("counts", false, "Annotate usage edges with occurrence counts")
		neo4jURI   = flag.String("neo4j-uri", "", "Neo4j bolt URI (empty = no export)")
		neo4jUser  = flag.String("neo4j-user", "neo4j", "Neo4j username")
		neo4jPass  = flag.String("neo4j-pass", "", "Neo4j password")
		clean      = flag.Bool("clean", false, "Clean existing graph data before loading")
	)
	flag.Parse()

	config := DefaultConfig()
	if *configPath != "" {
		var err error
		config, err = LoadConfigFile(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	// Flags override the config file.
	if *pkgPats != "" {
		config.Packages = splitList(*pkgPats)
	}
	if *scope != "" {
		config.Scope = *scope
	}
	if *kinds != "" {
		config.Kinds = splitList(*kinds)
	}
	if *outPuml != "" {
		config.Output.PlantUML = *outPuml
	}
	if *outMmd != "" {
		config.Output.Mermaid = *outMmd
	}
	if *outOver != "" {
		config.Output.Overview = *outOver
	}
	if *groupPkg {
		config.GroupByPackage = true
	}
	if *counts {
		config.AnnotateCounts = true
	}
	if err := config.Validate(); err != nil {
		log.Fatal(err)
	}
	kindSet, err := config.KindSet()
	if err != nil {
		log.Fatal(err)
	}

	// Resolve absolute path and module name.
	absDir, err := filepath.Abs(*dir)
	if err != nil {
		log.Fatal(err)
	}

	// Detect module path from go.mod.
	modulePath, err := detectModulePath(absDir)
	if err != nil {
		log.Fatalf("Cannot detect Go module: %v", err)
	}
	log.Printf("Module: %s", modulePath)
	log.Printf("Dir: %s", absDir)

	// Load packages.
	log.Println("Loading packages (this may take a minute)...")
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedImports | packages.NeedDeps | packages.NeedTypes |
			packages.NeedSyntax | packages.NeedTypesInfo,
		Dir: absDir,
	}
	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		log.Fatalf("Failed to load packages: %v", err)
	}
	if len(pkgs) == 0 {
		log.Fatalf("No compilable packages found in %s", absDir)
	}
	if n := packages.PrintErrors(pkgs); n > 0 {
		log.Printf("Warning: %d package errors (continuing anyway)", n)
	}
	log.Printf("Loaded %d packages", len(pkgs))

	if len(config.Packages) > 0 {
		matched := 0
		packages.Visit(pkgs, nil, func(pkg *packages.Package) {
			if config.MatchesPackage(pkg.PkgPath) {
				matched++
			}
		})
		if matched == 0 {
			log.Fatalf("No packages match patterns %v", config.Packages)
		}
	}

	// Build the code model.
	log.Println("Collecting types...")
	collector := NewCollector(modulePath)
	collector.Match = config.MatchesPackage
	model := collector.Collect(pkgs)
	log.Printf("Collected %d types", len(model.Types))

	// Extract relations.
	extractor := &Extractor{Scope: config.TypeScope()}
	graph, err := extractor.Extract(model)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Extracted %d nodes, %d distinct edges", len(graph.Nodes()), len(graph.CountedEdges()))

	groupOf := config.GroupFor()

	// Render and write diagrams.
	if config.Output.PlantUML != "" {
		text := RenderPlantUML(graph, PlantUMLOptions{
			Kinds:          kindSet,
			ShortName:      goShortName,
			GroupOf:        groupOf,
			AnnotateCounts: config.AnnotateCounts,
		})
		if err := os.WriteFile(config.Output.PlantUML, []byte(text), 0o644); err != nil {
			log.Fatal(err)
		}
		log.Printf("Wrote %s", config.Output.PlantUML)
	}
	if config.Output.Mermaid != "" {
		if err := os.WriteFile(config.Output.Mermaid, []byte(RenderMermaid(graph)), 0o644); err != nil {
			log.Fatal(err)
		}
		log.Printf("Wrote %s", config.Output.Mermaid)
	}
	if config.Output.Overview != "" {
		if groupOf == nil {
			log.Fatal("Overview output requires groups or -group-by-package")
		}
		text := RenderGroupOverview(graph, groupOf, OverviewOptions{Kinds: kindSet})
		if err := os.WriteFile(config.Output.Overview, []byte(text), 0o644); err != nil {
			log.Fatal(err)
		}
		log.Printf("Wrote %s", config.Output.Overview)
	}

	// Load into Neo4j.
	if *neo4jURI != "" {
		ctx := context.Background()
		exporter, err := NewNeo4jExporter(ctx, *neo4jURI, *neo4jUser, *neo4jPass)
		if err != nil {
			log.Fatal(err)
		}
		defer exporter.Close()

		if *clean {
			if err := exporter.CleanGraph(); err != nil {
				log.Fatal(err)
			}
		}
		if err := exporter.CreateIndexes(); err != nil {
			log.Fatal(err)
		}
		if err := exporter.ExportGraph(graph); err != nil {
			log.Fatal(err)
		}
		log.Println("Graph loaded into Neo4j.")
	}

	log.Println("Done.")
}

// goShortName displays an identity as "pkgbase.Type", friendlier for Go
// package paths than the default last-two-dot-segments rule.
func goShortName(id string) string {
	ns := namespaceOf(id)
	if ns == "" {
		return id
	}
	return path.Base(ns) + "." + id[len(ns)+1:]
}

// splitList splits a comma-separated flag value, trimming whitespace.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// detectModulePath reads the go.mod file in dir and returns the module path.
func detectModulePath(dir string) (string, error) {
	gomod := filepath.Join(dir, "go.mod")
	data, err := os.ReadFile(gomod)
	if err != nil {
		return "", fmt.Errorf("cannot read go.mod: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module")), nil
		}
	}
	return "", fmt.Errorf("module directive not found in go.mod")
}
