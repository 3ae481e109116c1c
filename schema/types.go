// Package schema parses and normalizes Weft's entity declaration DSL.
// A declaration is a vector-shaped value describing an entity type, its
// fields, and its relationships to other entities. Parsing produces a
// canonical EntitySpec with every relationship field rewritten into an
// explicit Ref node and a dependency list of required reference targets.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

// EntityType is a globally unique, namespace-qualified entity identifier,
// e.g. "inventory/Product".
type EntityType string

// Namespace returns the portion before the slash, or "" if unqualified.
func (t EntityType) Namespace() string {
	if i := strings.LastIndex(string(t), "/"); i >= 0 {
		return string(t)[:i]
	}
	return ""
}

// Name returns the portion after the slash.
func (t EntityType) Name() string {
	if i := strings.LastIndex(string(t), "/"); i >= 0 {
		return string(t)[i+1:]
	}
	return string(t)
}

// IsQualified reports whether the identifier carries a namespace.
func (t EntityType) IsQualified() bool {
	i := strings.Index(string(t), "/")
	return i > 0 && i < len(t)-1
}

// Props is a property map attached to an entity or a field.
type Props map[string]any

// Recognized property keys.
const (
	PropPrimaryKey = "primary-key?"
	PropIdentity   = "identity?"
	PropForeignKey = "foreign-key?"
	PropOptional   = "optional"
	PropTable      = "table"

	// PropOptionalRaw is accepted in raw declarations and normalized to
	// PropOptional during parsing. It never appears in a canonical spec.
	PropOptionalRaw = "optional?"

	// Required-relationship markers. Fields carrying one of these are
	// foreign keys and contribute a dependency edge.
	RelOneToOne  = "one-to-one?"
	RelManyToOne = "many-to-one?"

	// Optional-relationship markers. Fields carrying one of these are
	// excluded from the persisted column set and never force ordering.
	RelOneToMany  = "one-to-many?"
	RelManyToMany = "many-to-many?"
)

// Kind represents the built-in primitive field types.
type Kind int

const (
	KindString Kind = iota
	KindText
	KindInt
	KindBigInt
	KindFloat
	KindDecimal
	KindBool
	KindTimestamp
	KindDate
	KindUUID
	KindEmail
	KindURL
	KindJSON
)

// String returns the keyword form of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindBigInt:
		return "bigint"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindBool:
		return "bool"
	case KindTimestamp:
		return "timestamp"
	case KindDate:
		return "date"
	case KindUUID:
		return "uuid"
	case KindEmail:
		return "email"
	case KindURL:
		return "url"
	case KindJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseKind converts a type keyword to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "string":
		return KindString, nil
	case "text":
		return KindText, nil
	case "int":
		return KindInt, nil
	case "bigint":
		return KindBigInt, nil
	case "float":
		return KindFloat, nil
	case "decimal":
		return KindDecimal, nil
	case "bool":
		return KindBool, nil
	case "timestamp":
		return KindTimestamp, nil
	case "date":
		return KindDate, nil
	case "uuid":
		return KindUUID, nil
	case "email":
		return KindEmail, nil
	case "url":
		return KindURL, nil
	case "json":
		return KindJSON, nil
	default:
		return 0, fmt.Errorf("unknown type keyword: %s", s)
	}
}

// kindKeywords returns every recognized type keyword, sorted.
func kindKeywords() []string {
	kinds := []Kind{
		KindString, KindText, KindInt, KindBigInt, KindFloat, KindDecimal,
		KindBool, KindTimestamp, KindDate, KindUUID, KindEmail, KindURL,
		KindJSON,
	}
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = k.String()
	}
	sort.Strings(out)
	return out
}

// FieldType is the closed union of field type variants. Exactly four types
// implement it: Primitive, ParamPrimitive, Validator, and Ref.
type FieldType interface {
	fieldType()
	String() string
}

// Primitive is a bare type keyword, e.g. "string" or "uuid".
type Primitive struct {
	Kind Kind
}

func (Primitive) fieldType() {}

func (p Primitive) String() string { return p.Kind.String() }

// ParamPrimitive is a parametrized type keyword, e.g. a bounded string
// declared as ["string", {"max-length": 80}].
type ParamPrimitive struct {
	Kind  Kind
	Props Props
}

func (ParamPrimitive) fieldType() {}

func (p ParamPrimitive) String() string {
	return fmt.Sprintf("[%s %v]", p.Kind, map[string]any(p.Props))
}

// Validator is a custom predicate type. Check reports whether a value is
// acceptable for the field.
type Validator struct {
	Name  string
	Check func(any) bool
}

func (Validator) fieldType() {}

func (v Validator) String() string {
	if v.Name != "" {
		return "validator:" + v.Name
	}
	return "validator"
}

// Ref points at another entity type. Ref nodes are produced by the parser
// from qualified entity keywords; their validation semantics (raw key or
// embedded map) live in the entity registry, resolved lazily so that
// forward and mutual references parse cleanly.
type Ref struct {
	Target EntityType
}

func (Ref) fieldType() {}

func (r Ref) String() string { return "ref:" + string(r.Target) }

// FieldSpec is a single canonical field: name, property map, and type.
type FieldSpec struct {
	Name  string
	Props Props
	Type  FieldType
}

// Bool reports whether the named property is present and true.
func (f *FieldSpec) Bool(key string) bool {
	v, ok := f.Props[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// IsPrimaryKey reports whether the field is tagged primary-key?.
func (f *FieldSpec) IsPrimaryKey() bool { return f.Bool(PropPrimaryKey) }

// IsIdentity reports whether the field is tagged identity?.
func (f *FieldSpec) IsIdentity() bool { return f.Bool(PropIdentity) }

// IsForeignKey reports whether the field carries the derived foreign-key?
// marker.
func (f *FieldSpec) IsForeignKey() bool { return f.Bool(PropForeignKey) }

// IsOptional reports whether the field may be absent from instance data.
func (f *FieldSpec) IsOptional() bool {
	return f.Bool(PropOptional) || f.IsOptionalRelation()
}

// IsOptionalRelation reports whether the field carries an
// optional-relationship marker (one-to-many? / many-to-many?). Such fields
// are excluded from the persisted column set.
func (f *FieldSpec) IsOptionalRelation() bool {
	return f.Bool(RelOneToMany) || f.Bool(RelManyToMany)
}

// IsRequiredRelation reports whether the field carries a
// required-relationship marker (one-to-one? / many-to-one?).
func (f *FieldSpec) IsRequiredRelation() bool {
	return f.Bool(RelOneToOne) || f.Bool(RelManyToOne)
}

// EntitySpec is the canonical form of an entity declaration. Field order is
// stable and equals declaration order; value extraction depends on it.
type EntitySpec struct {
	Type   EntityType
	Props  Props
	Fields []FieldSpec

	// Deps lists the entity types this entity requires before it can be
	// persisted: the targets of its non-optional reference fields, in
	// declaration order, deduplicated.
	Deps []EntityType
}

// TableName returns the backing table name: the "table" entity property if
// set, otherwise the snake_cased entity name.
func (s *EntitySpec) TableName() string {
	if v, ok := s.Props[PropTable]; ok {
		if name, ok := v.(string); ok && name != "" {
			return name
		}
	}
	return toSnakeCase(s.Type.Name())
}

// Field returns the field with the given name.
func (s *EntitySpec) Field(name string) (*FieldSpec, bool) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// PrimaryKey returns the first field tagged primary-key?, in declaration
// order.
func (s *EntitySpec) PrimaryKey() (*FieldSpec, bool) {
	for i := range s.Fields {
		if s.Fields[i].IsPrimaryKey() {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// Identity returns the field tagged identity?, if any. The identity field
// is distinct from the primary key.
func (s *EntitySpec) Identity() (*FieldSpec, bool) {
	for i := range s.Fields {
		if s.Fields[i].IsIdentity() {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// DependsOn reports whether the spec carries a required foreign-key field
// targeting dep.
func (s *EntitySpec) DependsOn(dep EntityType) bool {
	for _, d := range s.Deps {
		if d == dep {
			return true
		}
	}
	return false
}

// toSnakeCase converts a string to snake_case.
func toSnakeCase(s string) string {
	var result []rune
	runes := []rune(s)

	for i, r := range runes {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := runes[i-1]
			if prev >= 'a' && prev <= 'z' {
				result = append(result, '_')
			} else if i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z' {
				result = append(result, '_')
			}
		}
		if r >= 'A' && r <= 'Z' {
			result = append(result, r+('a'-'A'))
		} else {
			result = append(result, r)
		}
	}
	return string(result)
}
