package entity

import (
	"github.com/weftlabs/weft/schema"
)

// Entity is a runtime handle over a registered entity type. It carries no
// schema state of its own: every operation reads the registry's current
// snapshot, so a handle created before registration starts working the
// moment the type is registered.
type Entity struct {
	typ schema.EntityType
	reg *Registry
}

// Type returns the entity type this handle wraps.
func (e *Entity) Type() schema.EntityType { return e.typ }

// Spec returns the canonical spec, or *UnknownEntityError.
func (e *Entity) Spec() (*schema.EntitySpec, error) {
	spec, ok := e.reg.Lookup(e.typ)
	if !ok {
		return nil, &UnknownEntityError{Type: e.typ}
	}
	return spec, nil
}

// TableName returns the backing table name for storage adapters.
func (e *Entity) TableName() (string, error) {
	spec, err := e.Spec()
	if err != nil {
		return "", err
	}
	return spec.TableName(), nil
}

// Fields returns the persisted fields in declaration order. Fields tagged
// with an optional-relationship marker (one-to-many? / many-to-many?) are
// excluded: they are not part of the persisted column set.
func (e *Entity) Fields() ([]schema.FieldSpec, error) {
	spec, err := e.Spec()
	if err != nil {
		return nil, err
	}
	fields := make([]schema.FieldSpec, 0, len(spec.Fields))
	for _, f := range spec.Fields {
		if f.IsOptionalRelation() {
			continue
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// Columns returns the persisted field names in declaration order.
func (e *Entity) Columns() ([]string, error) {
	fields, err := e.Fields()
	if err != nil {
		return nil, err
	}
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}
	return cols, nil
}

// Values extracts field values from a record in column order, for storage
// adapters. Absent fields yield nil at their position so the tuple always
// lines up with Columns.
func (e *Entity) Values(data map[string]any) ([]any, error) {
	fields, err := e.Fields()
	if err != nil {
		return nil, err
	}
	values := make([]any, len(fields))
	for i, f := range fields {
		values[i] = data[f.Name]
	}
	return values, nil
}

// IdentityField returns the field tagged identity?, if any. The identity
// field is distinct from the primary key.
func (e *Entity) IdentityField() (*schema.FieldSpec, bool, error) {
	spec, err := e.Spec()
	if err != nil {
		return nil, false, err
	}
	f, ok := spec.Identity()
	return f, ok, nil
}

// PrimaryKeyField returns the first field tagged primary-key?, if any.
func (e *Entity) PrimaryKeyField() (*schema.FieldSpec, bool, error) {
	spec, err := e.Spec()
	if err != nil {
		return nil, false, err
	}
	f, ok := spec.PrimaryKey()
	return f, ok, nil
}

// RefSchema returns the derived reference schema for this entity.
func (e *Entity) RefSchema() (*RefSchema, error) {
	if _, ok := e.reg.Lookup(e.typ); !ok {
		return nil, &UnknownEntityError{Type: e.typ}
	}
	ref, ok := e.reg.RefSchema(e.typ)
	if !ok {
		return nil, &NoPrimaryKeyError{Type: e.typ}
	}
	return ref, nil
}

// DependsOn reports whether this entity carries a required foreign-key
// field targeting dep.
func (e *Entity) DependsOn(dep schema.EntityType) (bool, error) {
	spec, err := e.Spec()
	if err != nil {
		return false, err
	}
	return spec.DependsOn(dep), nil
}
