package autowire

import (
	"sort"
	"strings"
	"sync"
)

// Symbol is a symbolic scope root, the non-string spelling accepted by the
// scanner (mirroring symbol-vs-string roots in the DSL surface).
type Symbol string

// Index registers the scopes of a code base. The project name decides
// ownership: only scopes named after the project (or nested beneath it,
// dot-separated) are project-owned and visible to the scanner; everything
// else counts as dependency code and is excluded.
type Index struct {
	project string

	mu     sync.Mutex
	order  []string
	scopes map[string]*Scope
}

// NewIndex creates an index for a project.
func NewIndex(project string) *Index {
	return &Index{
		project: project,
		scopes:  make(map[string]*Scope),
	}
}

// Project returns the owning project name.
func (ix *Index) Project() string { return ix.project }

// Register adds a scope to the index. Re-registering a name replaces the
// scope but keeps its original discovery position.
func (ix *Index) Register(scope *Scope) *Index {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, exists := ix.scopes[scope.name]; !exists {
		ix.order = append(ix.order, scope.name)
	}
	ix.scopes[scope.name] = scope
	return ix
}

// Names returns all registered scope names, sorted.
func (ix *Index) Names() []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	names := make([]string, len(ix.order))
	copy(names, ix.order)
	sort.Strings(names)
	return names
}

// ScanOptions configures scanner behavior.
type ScanOptions struct {
	// Permissive disables defensive input typing: an unsupported root
	// degrades silently to an empty result instead of raising
	// *UnsupportedScanInputError.
	Permissive bool
}

// Scan enumerates project-owned scopes reachable from root, in discovery
// order. The root contract has three distinct cases:
//
//   - omitted (no argument): the whole project is scanned
//   - explicit nil: the result is empty — not the same as omitted
//   - a string or Symbol: scopes at or beneath that prefix
//
// Anything else fails fast with *UnsupportedScanInputError; see ScanWith
// for the permissive variant.
func (ix *Index) Scan(root ...any) ([]*Scope, error) {
	return ix.ScanWith(ScanOptions{}, root...)
}

// ScanWith is Scan with explicit options.
func (ix *Index) ScanWith(opts ScanOptions, root ...any) ([]*Scope, error) {
	var prefix string

	switch {
	case len(root) == 0:
		// Omitted root: scan the whole project.
		prefix = ix.project

	case len(root) > 1:
		if opts.Permissive {
			return []*Scope{}, nil
		}
		return nil, &UnsupportedScanInputError{Got: root}

	default:
		switch r := root[0].(type) {
		case nil:
			// Explicit nil is empty, by contract.
			return []*Scope{}, nil
		case string:
			prefix = r
		case Symbol:
			prefix = string(r)
		default:
			if opts.Permissive {
				return []*Scope{}, nil
			}
			return nil, &UnsupportedScanInputError{Got: root[0]}
		}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	result := []*Scope{}
	for _, name := range ix.order {
		if !underPrefix(name, ix.project) {
			continue // dependency code, never scanned
		}
		if !underPrefix(name, prefix) {
			continue
		}
		result = append(result, ix.scopes[name])
	}
	return result, nil
}

// underPrefix reports whether a dot-separated scope name equals the prefix
// or nests beneath it.
func underPrefix(name, prefix string) bool {
	return name == prefix || strings.HasPrefix(name, prefix+".")
}
