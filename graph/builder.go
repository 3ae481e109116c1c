// Package graph converts collected component definitions into a
// declarative configuration: every dependency name becomes a reference
// placeholder, and parent/multi-parent composition is resolved into
// ordered child lists. Nothing is instantiated here — the configuration is
// consumed wholesale by a lifecycle manager.
package graph

import "github.com/weftlabs/weft/autowire"

// Ref is a dependency placeholder pointing at a component key. Placeholders
// are resolved by the lifecycle manager at instantiation time, not by the
// builder.
type Ref struct {
	Key string
}

// Node is one entry of the declarative configuration.
type Node struct {
	Key string
	Def autowire.ComponentDef

	// Deps maps each declared dependency key to its placeholder. A
	// placeholder is emitted even when no definition exists for the key;
	// missing targets are detected at resolution time.
	Deps map[string]Ref

	// Synthetic marks a parent slot that exists only because children
	// target it. Its value is the merged child aggregate.
	Synthetic bool
}

// Config is the declarative component configuration.
type Config struct {
	// Order lists node keys in discovery order, synthetic parent slots
	// appended after the components that produced them.
	Order []string

	// Nodes maps keys to configuration entries.
	Nodes map[string]*Node

	// Children maps a parent slot key to its child component keys in
	// discovery order.
	Children map[string][]string
}

// Node returns the configuration entry for a key.
func (c *Config) Node(key string) (*Node, bool) {
	n, ok := c.Nodes[key]
	return n, ok
}

// Build converts a collection into a declarative configuration.
//
// Every declared dependency is rewritten into a Ref placeholder — always,
// even when the target key has no definition in the collection. Failing
// slow here keeps all wiring failures in one place: the lifecycle manager's
// resolution step.
//
// Children declaring a parent slot are recorded under that slot in
// discovery order; a slot with no standalone definition gains a synthetic
// node so the aggregate has somewhere to live.
func Build(c *autowire.Collection) *Config {
	cfg := &Config{
		Nodes:    make(map[string]*Node, len(c.Defs)),
		Children: make(map[string][]string),
	}

	for _, key := range c.Order {
		def := c.Defs[key]

		node := &Node{
			Key:  key,
			Def:  def,
			Deps: make(map[string]Ref, len(def.Deps)),
		}
		for _, dep := range def.Deps {
			node.Deps[dep] = Ref{Key: dep}
		}

		cfg.Nodes[key] = node
		cfg.Order = append(cfg.Order, key)

		if def.Parent != "" {
			cfg.Children[def.Parent] = append(cfg.Children[def.Parent], key)
		}
	}

	// Parent slots without a definition of their own become synthetic
	// aggregate nodes.
	for _, key := range cfg.Order {
		parent := cfg.Nodes[key].Def.Parent
		if parent == "" {
			continue
		}
		if _, exists := cfg.Nodes[parent]; !exists {
			cfg.Nodes[parent] = &Node{
				Key:       parent,
				Deps:      map[string]Ref{},
				Synthetic: true,
			}
			cfg.Order = append(cfg.Order, parent)
		}
	}

	return cfg
}
