package entity

import (
	"fmt"

	"github.com/weftlabs/weft/schema"
)

// RefSchema is the derived companion schema of an entity: the validator
// used wherever another entity references it. It accepts either a raw
// primary-key value or a map that embeds the primary-key field, covering
// both "store the key" and "embed the object" call sites.
//
// Derivation picks the first field tagged primary-key? in declaration
// order and happens at registration time; validation happens lazily, so
// the referencing entity may be declared before its target.
type RefSchema struct {
	Target   schema.EntityType
	KeyField string
	KeyType  schema.FieldType
}

// Validate checks a reference value. The two accepted shapes:
//
//   - a raw value matching the target's primary-key type
//   - a map containing the primary-key field with a matching value
func (rs *RefSchema) Validate(value any) error {
	if m, ok := asRecord(value); ok {
		key, present := m[rs.KeyField]
		if !present {
			return fmt.Errorf("reference to %s: map is missing primary-key field %q",
				rs.Target, rs.KeyField)
		}
		if err := checkFieldValue(rs.KeyType, key); err != nil {
			return fmt.Errorf("reference to %s: field %q: %s",
				rs.Target, rs.KeyField, err)
		}
		return nil
	}

	if err := checkFieldValue(rs.KeyType, value); err != nil {
		return fmt.Errorf("reference to %s: %s", rs.Target, err)
	}
	return nil
}

// asRecord normalizes the map shapes accepted as embedded references.
func asRecord(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case schema.Props:
		return m, true
	default:
		return nil, false
	}
}
