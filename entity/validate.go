package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/weftlabs/weft/schema"
)

// Validate checks a record against the entity schema. It returns nil when
// the record is valid, *ValidationErrors carrying per-field diagnostics
// when it is not, and *UnknownEntityError when this entity — or the target
// of one of its reference fields — was never registered.
//
// Reference fields resolve against the live registry at validation time,
// never earlier, so forward and mutually referencing entities validate as
// long as every target is registered by the time data arrives.
func (e *Entity) Validate(data map[string]any) error {
	spec, err := e.Spec()
	if err != nil {
		return err
	}

	verrs := NewValidationErrors(e.typ)
	for i := range spec.Fields {
		f := &spec.Fields[i]
		if f.IsOptionalRelation() {
			// Not persisted; populated by the storage layer, never
			// supplied with instance data.
			continue
		}

		value, present := data[f.Name]
		if !present || value == nil {
			if !f.IsOptional() {
				verrs.Add(f.Name, "is required")
			}
			continue
		}

		if err := e.checkField(f, value, verrs); err != nil {
			return err
		}
	}

	if verrs.HasErrors() {
		return verrs
	}
	return nil
}

// checkField validates a single present value. Field-level failures are
// recorded as diagnostics; an unresolved reference target aborts with
// *UnknownEntityError.
func (e *Entity) checkField(f *schema.FieldSpec, value any, verrs *ValidationErrors) error {
	ref, isRef := f.Type.(schema.Ref)
	if !isRef {
		if err := checkFieldValue(f.Type, value); err != nil {
			verrs.Add(f.Name, err.Error())
		}
		return nil
	}

	if _, ok := e.reg.Lookup(ref.Target); !ok {
		return &UnknownEntityError{Type: ref.Target}
	}
	rs, ok := e.reg.RefSchema(ref.Target)
	if !ok {
		return &NoPrimaryKeyError{Type: ref.Target}
	}
	if err := rs.Validate(value); err != nil {
		verrs.Add(f.Name, err.Error())
	}
	return nil
}

// checkFieldValue dispatches over the non-reference field type variants.
func checkFieldValue(ft schema.FieldType, value any) error {
	switch t := ft.(type) {
	case schema.Primitive:
		return checkPrimitive(t.Kind, value)

	case schema.ParamPrimitive:
		if err := checkPrimitive(t.Kind, value); err != nil {
			return err
		}
		return checkParams(t, value)

	case schema.Validator:
		if t.Check == nil || !t.Check(value) {
			if t.Name != "" {
				return fmt.Errorf("failed validator %q", t.Name)
			}
			return errors.New("failed validator")
		}
		return nil

	case schema.Ref:
		// Refs need a live registry; handled by checkField.
		return fmt.Errorf("reference to %s cannot be checked without a registry", t.Target)

	default:
		return fmt.Errorf("unsupported field type %T", ft)
	}
}

// checkPrimitive validates a value against a primitive type keyword.
func checkPrimitive(kind schema.Kind, value any) error {
	switch kind {
	case schema.KindString, schema.KindText:
		if _, ok := value.(string); !ok {
			return typeError(kind, value)
		}

	case schema.KindInt, schema.KindBigInt:
		switch value.(type) {
		case int, int32, int64:
		default:
			return typeError(kind, value)
		}

	case schema.KindFloat, schema.KindDecimal:
		switch value.(type) {
		case float32, float64, int, int64:
		default:
			return typeError(kind, value)
		}

	case schema.KindBool:
		if _, ok := value.(bool); !ok {
			return typeError(kind, value)
		}

	case schema.KindTimestamp:
		switch v := value.(type) {
		case time.Time:
		case string:
			if _, err := time.Parse(time.RFC3339, v); err != nil {
				return fmt.Errorf("must be an RFC 3339 timestamp")
			}
		default:
			return typeError(kind, value)
		}

	case schema.KindDate:
		switch v := value.(type) {
		case time.Time:
		case string:
			if _, err := time.Parse("2006-01-02", v); err != nil {
				return fmt.Errorf("must be a date in YYYY-MM-DD form")
			}
		default:
			return typeError(kind, value)
		}

	case schema.KindUUID:
		switch v := value.(type) {
		case uuid.UUID:
		case string:
			if _, err := uuid.Parse(v); err != nil {
				return fmt.Errorf("must be a valid UUID")
			}
		default:
			return typeError(kind, value)
		}

	case schema.KindEmail:
		s, ok := value.(string)
		if !ok {
			return typeError(kind, value)
		}
		if _, err := mail.ParseAddress(s); err != nil {
			return fmt.Errorf("must be a valid email address")
		}

	case schema.KindURL:
		s, ok := value.(string)
		if !ok {
			return typeError(kind, value)
		}
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("must be an absolute URL")
		}

	case schema.KindJSON:
		switch v := value.(type) {
		case map[string]any, []any:
		case string:
			if !json.Valid([]byte(v)) {
				return fmt.Errorf("must be valid JSON")
			}
		default:
			return typeError(kind, value)
		}

	default:
		return fmt.Errorf("unknown primitive kind %v", kind)
	}
	return nil
}

// checkParams enforces the parameters of a parametrized primitive:
// max-length for text kinds, min/max bounds for numeric kinds.
func checkParams(t schema.ParamPrimitive, value any) error {
	if limit, ok := intParam(t.Props, "max-length"); ok {
		if s, isStr := value.(string); isStr && len(s) > limit {
			return fmt.Errorf("must be at most %d characters", limit)
		}
	}
	if bound, ok := floatParam(t.Props, "min"); ok {
		if n, isNum := asFloat(value); isNum && n < bound {
			return fmt.Errorf("must be at least %v", bound)
		}
	}
	if bound, ok := floatParam(t.Props, "max"); ok {
		if n, isNum := asFloat(value); isNum && n > bound {
			return fmt.Errorf("must be at most %v", bound)
		}
	}
	return nil
}

func typeError(kind schema.Kind, value any) error {
	return fmt.Errorf("must be of type %s, got %T", kind, value)
}

func intParam(p schema.Props, key string) (int, bool) {
	switch v := p[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func floatParam(p schema.Props, key string) (float64, bool) {
	switch v := p[key].(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
