package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Config is the full analyzer configuration, loadable from a YAML file.
// CLI flags override individual fields after loading.
type Config struct {
	// Scope selects which referenced types produce edges: "internal"
	// (project types only, the default) or "all".
	Scope string `yaml:"scope"`

	// Kinds lists the relation kinds to render; empty means all.
	Kinds []string `yaml:"kinds"`

	// Packages restricts analysis to packages matching these doublestar
	// patterns; empty means the whole module.
	Packages []string `yaml:"packages"`

	// Groups clusters diagram nodes into named package blocks.
	Groups []GroupConfig `yaml:"groups"`

	// GroupByPackage groups every node by its full package path when no
	// explicit groups match.
	GroupByPackage bool `yaml:"group_by_package"`

	// AnnotateCounts appends occurrence counts to usage-edge labels.
	AnnotateCounts bool `yaml:"annotate_counts"`

	Output OutputConfig `yaml:"output"`
}

// GroupConfig maps package-path patterns to a diagram group label.
type GroupConfig struct {
	Name     string   `yaml:"name"`
	Packages []string `yaml:"packages"`
}

// OutputConfig holds the output file paths; empty paths disable a format.
type OutputConfig struct {
	PlantUML string `yaml:"plantuml"`
	Mermaid  string `yaml:"mermaid"`
	Overview string `yaml:"overview"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Scope: "internal",
		Output: OutputConfig{
			PlantUML: "typegraph.puml",
		},
	}
}

// LoadConfigFile reads and validates a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Scope != "internal" && c.Scope != "all" {
		return fmt.Errorf("scope must be \"internal\" or \"all\", got %q", c.Scope)
	}
	if _, err := c.KindSet(); err != nil {
		return err
	}
	for _, g := range c.Groups {
		if g.Name == "" {
			return fmt.Errorf("group with packages %v has no name", g.Packages)
		}
		if len(g.Packages) == 0 {
			return fmt.Errorf("group %q has no package patterns", g.Name)
		}
		for _, pattern := range g.Packages {
			if !doublestar.ValidatePattern(pattern) {
				return fmt.Errorf("group %q: bad pattern %q", g.Name, pattern)
			}
		}
	}
	for _, pattern := range c.Packages {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("bad package pattern %q", pattern)
		}
	}
	return nil
}

// TypeScope returns the configured extraction scope.
func (c *Config) TypeScope() TypeScope {
	if c.Scope == "all" {
		return ScopeAll
	}
	return ScopeInternal
}

// KindSet parses the configured kind names into a renderer filter set.
// An empty list yields nil, meaning all kinds.
func (c *Config) KindSet() (map[RelationKind]bool, error) {
	if len(c.Kinds) == 0 {
		return nil, nil
	}
	set := make(map[RelationKind]bool, len(c.Kinds))
	for _, name := range c.Kinds {
		kind, err := ParseRelationKind(name)
		if err != nil {
			return nil, err
		}
		set[kind] = true
	}
	return set, nil
}

// ParseRelationKind parses a kind name as written in config files.
func ParseRelationKind(name string) (RelationKind, error) {
	for _, kind := range AllRelationKinds {
		if kind.String() == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown relation kind %q", name)
}

// GroupFor returns the grouping function derived from the config, or nil
// when grouping is disabled. Explicit group patterns are matched against
// the namespace part of the identity; group_by_package falls back to the
// namespace itself as the label.
func (c *Config) GroupFor() func(id string) (string, bool) {
	if len(c.Groups) == 0 && !c.GroupByPackage {
		return nil
	}
	groups := c.Groups
	byPackage := c.GroupByPackage
	return func(id string) (string, bool) {
		ns := namespaceOf(id)
		for _, g := range groups {
			for _, pattern := range g.Packages {
				if ok, _ := doublestar.Match(pattern, ns); ok {
					return g.Name, true
				}
			}
		}
		if byPackage && ns != "" {
			return ns, true
		}
		return "", false
	}
}

// MatchesPackage reports whether a package path passes the configured
// package patterns. No patterns means everything matches.
func (c *Config) MatchesPackage(pkgPath string) bool {
	if len(c.Packages) == 0 {
		return true
	}
	for _, pattern := range c.Packages {
		if ok, _ := doublestar.Match(pattern, pkgPath); ok {
			return true
		}
	}
	return false
}

// namespaceOf extracts the namespace (package path) part of an identity:
// everything before the last dot outside any generic argument list.
func namespaceOf(id string) string {
	if i := strings.IndexByte(id, '<'); i >= 0 {
		id = id[:i]
	}
	if i := strings.LastIndexByte(id, '.'); i >= 0 {
		return id[:i]
	}
	return ""
}
