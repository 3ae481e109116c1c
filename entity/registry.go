// Package entity provides the registry that holds canonical entity schemas
// and their derived reference schemas, plus the runtime Entity handle used
// for validation and column/value introspection by storage adapters.
//
// The registry is mutated only at declaration time. Writes build a fresh
// immutable snapshot and swap it in atomically, so concurrent readers never
// observe a partial update and reads take no locks.
package entity

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/weftlabs/weft/schema"
)

// snapshot is one immutable registry state. Maps inside a snapshot are
// never mutated after it is stored.
type snapshot struct {
	specs map[schema.EntityType]*schema.EntitySpec
	refs  map[schema.EntityType]*RefSchema
}

func emptySnapshot() *snapshot {
	return &snapshot{
		specs: make(map[schema.EntityType]*schema.EntitySpec),
		refs:  make(map[schema.EntityType]*RefSchema),
	}
}

func (s *snapshot) clone() *snapshot {
	next := &snapshot{
		specs: make(map[schema.EntityType]*schema.EntitySpec, len(s.specs)+1),
		refs:  make(map[schema.EntityType]*RefSchema, len(s.refs)+1),
	}
	for k, v := range s.specs {
		next.specs[k] = v
	}
	for k, v := range s.refs {
		next.refs[k] = v
	}
	return next
}

// Registry maps entity types to canonical schemas and derived reference
// schemas. The zero value is not usable; call NewRegistry.
type Registry struct {
	mu   sync.Mutex // serializes writers
	snap atomic.Pointer[snapshot]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.snap.Store(emptySnapshot())
	return r
}

// Register parses a raw entity declaration and stores its canonical spec
// and derived reference schema. Registration is idempotent per entity
// type: the last registration wins. Reference targets do not have to be
// registered yet; they resolve lazily at validation time.
func (r *Registry) Register(raw []any) (*Entity, error) {
	spec, err := schema.Parse(raw)
	if err != nil {
		return nil, err
	}
	return r.RegisterSpec(spec)
}

// RegisterSpec stores an already-parsed spec. The spec is re-normalized so
// hand-built specs behave identically to parsed ones.
func (r *Registry) RegisterSpec(spec *schema.EntitySpec) (*Entity, error) {
	spec = schema.Normalize(spec)

	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.snap.Load().clone()
	next.specs[spec.Type] = spec
	if pk, ok := spec.PrimaryKey(); ok {
		next.refs[spec.Type] = &RefSchema{
			Target:   spec.Type,
			KeyField: pk.Name,
			KeyType:  pk.Type,
		}
	} else {
		delete(next.refs, spec.Type)
	}
	r.snap.Store(next)

	return &Entity{typ: spec.Type, reg: r}, nil
}

// Entity returns a handle for the given type. The handle is valid even if
// the type has not been registered yet; operations on it fail with
// *UnknownEntityError until registration happens.
func (r *Registry) Entity(typ schema.EntityType) *Entity {
	return &Entity{typ: typ, reg: r}
}

// Lookup returns the canonical spec for an entity type.
func (r *Registry) Lookup(typ schema.EntityType) (*schema.EntitySpec, bool) {
	spec, ok := r.snap.Load().specs[typ]
	return spec, ok
}

// RefSchema returns the derived reference schema for an entity type. It is
// absent when the type is unregistered or declares no primary-key field.
func (r *Registry) RefSchema(typ schema.EntityType) (*RefSchema, bool) {
	ref, ok := r.snap.Load().refs[typ]
	return ref, ok
}

// DependsOn reports whether target carries a required foreign-key field
// whose resolved target equals dep. An unregistered target never depends
// on anything.
func (r *Registry) DependsOn(target, dep schema.EntityType) bool {
	spec, ok := r.Lookup(target)
	if !ok {
		return false
	}
	return spec.DependsOn(dep)
}

// Types returns all registered entity types, sorted.
func (r *Registry) Types() []schema.EntityType {
	snap := r.snap.Load()
	types := make([]schema.EntityType, 0, len(snap.specs))
	for typ := range snap.specs {
		types = append(types, typ)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Count returns the number of registered entity types.
func (r *Registry) Count() int {
	return len(r.snap.Load().specs)
}
