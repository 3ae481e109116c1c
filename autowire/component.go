// Package autowire discovers component definitions in project-owned scopes
// and prepares them for dependency-graph building.
//
// A component is a statically-typed descriptor: a factory plus the names of
// the components it depends on. Descriptors replace runtime reflection over
// function metadata — wiring stays automatic, discovery stays auditable.
package autowire

import "context"

// BuildFunc constructs a component value. deps maps each declared
// dependency key to its already-initialized value.
type BuildFunc func(ctx context.Context, deps map[string]any) (any, error)

// HaltFunc tears a component value down.
type HaltFunc func(ctx context.Context, value any) error

// ComponentDef declares a single component.
type ComponentDef struct {
	// Name is the definition name, unique within its scope. The collector
	// derives the component key by qualifying it with the scope name.
	Name string

	// Autowired marks the definition as eligible for collection.
	// Untagged definitions are silently skipped.
	Autowired bool

	// Deps names the components this one depends on, by key. Each entry
	// becomes an edge in the component graph.
	Deps []string

	// Parent, when set, merges this component's value into the named
	// parent slot instead of registering it standalone. Multiple children
	// targeting the same slot aggregate into an ordered sequence.
	Parent string

	// Build constructs the component value from its resolved dependencies.
	Build BuildFunc

	// Halt optionally tears the value down. Halt hooks run in reverse
	// initialization order.
	Halt HaltFunc
}

// Scope is a named, ordered collection of component definitions — one
// project-owned code scope as seen by the scanner.
type Scope struct {
	name string
	defs []ComponentDef
}

// NewScope creates a scope with the given definitions in order.
func NewScope(name string, defs ...ComponentDef) *Scope {
	s := &Scope{name: name}
	s.defs = append(s.defs, defs...)
	return s
}

// Name returns the scope name, e.g. "myapp.components.db".
func (s *Scope) Name() string { return s.name }

// Add appends a definition and returns the scope for chaining.
func (s *Scope) Add(def ComponentDef) *Scope {
	s.defs = append(s.defs, def)
	return s
}

// Defs returns the definitions in declaration order.
func (s *Scope) Defs() []ComponentDef {
	out := make([]ComponentDef, len(s.defs))
	copy(out, s.defs)
	return out
}
