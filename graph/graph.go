package graph

import (
	"fmt"
	"strings"
)

// DependencyGraph is the edge view of a configuration, used for ordering
// and cycle analysis. An edge A -> B means A must be initialized after B.
type DependencyGraph struct {
	cfg   *Config
	edges map[string][]string
}

// NewDependencyGraph builds the edge view of a configuration. Edges come
// from dependency placeholders and from parent slots (a parent aggregates
// its children's values, so it initializes after them). Placeholders whose
// target has no node are not edges — they surface as missing dependencies
// at resolution time instead.
func NewDependencyGraph(cfg *Config) *DependencyGraph {
	g := &DependencyGraph{
		cfg:   cfg,
		edges: make(map[string][]string),
	}

	for _, key := range cfg.Order {
		node := cfg.Nodes[key]
		for _, ref := range node.Deps {
			if _, exists := cfg.Nodes[ref.Key]; exists {
				g.edges[key] = append(g.edges[key], ref.Key)
			}
		}
	}
	for parent, children := range cfg.Children {
		g.edges[parent] = append(g.edges[parent], children...)
	}

	return g
}

// MissingTargets returns every placeholder target that has no node, mapped
// to the keys that want it.
func (g *DependencyGraph) MissingTargets() map[string][]string {
	missing := make(map[string][]string)
	for _, key := range g.cfg.Order {
		for _, ref := range g.cfg.Nodes[key].Deps {
			if _, exists := g.cfg.Nodes[ref.Key]; !exists {
				missing[ref.Key] = append(missing[ref.Key], key)
			}
		}
	}
	return missing
}

// DetectCycles detects dependency cycles.
func (g *DependencyGraph) DetectCycles() [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	recursionStack := make(map[string]bool)

	var dfs func(node string, path []string) bool
	dfs = func(node string, path []string) bool {
		visited[node] = true
		recursionStack[node] = true
		path = append(path, node)

		for _, neighbor := range g.edges[node] {
			if !visited[neighbor] {
				if dfs(neighbor, path) {
					return true
				}
			} else if recursionStack[neighbor] {
				cycleStart := -1
				for i, n := range path {
					if n == neighbor {
						cycleStart = i
						break
					}
				}
				if cycleStart >= 0 {
					cycle := make([]string, len(path)-cycleStart)
					copy(cycle, path[cycleStart:])
					cycles = append(cycles, cycle)
				}
				return true
			}
		}

		recursionStack[node] = false
		return false
	}

	for _, node := range g.cfg.Order {
		if !visited[node] {
			dfs(node, []string{})
		}
	}

	return cycles
}

// TopologicalSort returns component keys in initialization order:
// dependencies before dependents. Ties resolve by discovery order, so the
// result is deterministic for a given configuration.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	outDegree := make(map[string]int)
	for _, node := range g.cfg.Order {
		outDegree[node] = len(g.edges[node])
	}

	reverseEdges := make(map[string][]string)
	for source, targets := range g.edges {
		for _, target := range targets {
			reverseEdges[target] = append(reverseEdges[target], source)
		}
	}

	// Seed with nodes that depend on nothing, in discovery order.
	queue := []string{}
	for _, node := range g.cfg.Order {
		if outDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	result := []string{}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, dependent := range reverseEdges[node] {
			outDegree[dependent]--
			if outDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(g.cfg.Order) {
		cycles := g.DetectCycles()
		if len(cycles) > 0 {
			return nil, fmt.Errorf("dependency cycle detected: %s", formatCycles(cycles))
		}
		return nil, fmt.Errorf("dependency cycle detected")
	}

	return result, nil
}

// Dependencies returns the direct dependencies of a component.
func (g *DependencyGraph) Dependencies(key string) []string {
	deps, exists := g.edges[key]
	if !exists {
		return []string{}
	}
	return deps
}

// Dependents returns the components that directly depend on key.
func (g *DependencyGraph) Dependents(key string) []string {
	dependents := []string{}
	for _, node := range g.cfg.Order {
		for _, dep := range g.edges[node] {
			if dep == key {
				dependents = append(dependents, node)
				break
			}
		}
	}
	return dependents
}

// formatCycles formats cycle information for error messages.
func formatCycles(cycles [][]string) string {
	var b strings.Builder
	for i, cycle := range cycles {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(strings.Join(cycle, " -> "))
		b.WriteString(" -> ")
		b.WriteString(cycle[0])
	}
	return b.String()
}

// Report summarizes the dependency structure of a configuration.
type Report struct {
	TotalComponents  int
	Dependencies     map[string][]string
	Dependents       map[string][]string
	Missing          map[string][]string
	Cycles           [][]string
	HasCycles        bool
	TopologicalOrder []string
}

// Analyze produces a dependency report for a configuration.
func Analyze(cfg *Config) *Report {
	g := NewDependencyGraph(cfg)

	report := &Report{
		TotalComponents: len(cfg.Order),
		Dependencies:    make(map[string][]string),
		Dependents:      make(map[string][]string),
		Missing:         g.MissingTargets(),
	}

	for _, key := range cfg.Order {
		report.Dependencies[key] = g.Dependencies(key)
		report.Dependents[key] = g.Dependents(key)
	}

	report.Cycles = g.DetectCycles()
	report.HasCycles = len(report.Cycles) > 0

	if order, err := g.TopologicalSort(); err == nil {
		report.TopologicalOrder = order
	}

	return report
}

// String formats the report for human consumption.
func (r *Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Component Graph Report\n")
	fmt.Fprintf(&b, "Total components: %d\n", r.TotalComponents)

	if r.HasCycles {
		fmt.Fprintf(&b, "\nERRORS:\nDependency cycles: %s\n", formatCycles(r.Cycles))
	}
	for target, wantedBy := range r.Missing {
		fmt.Fprintf(&b, "\nMissing dependency %s (wanted by %s)\n",
			target, strings.Join(wantedBy, ", "))
	}

	if len(r.TopologicalOrder) > 0 {
		b.WriteString("\nInitialization order:\n")
		for i, key := range r.TopologicalOrder {
			deps := r.Dependencies[key]
			if len(deps) > 0 {
				fmt.Fprintf(&b, "  %d. %s (depends on: %s)\n",
					i+1, key, strings.Join(deps, ", "))
			} else {
				fmt.Fprintf(&b, "  %d. %s\n", i+1, key)
			}
		}
	}

	return b.String()
}
