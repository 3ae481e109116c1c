package schema

import "fmt"

// Grammar productions quoted in error diagnostics.
const (
	grammarEntity = "[entityType properties? field*]"
	grammarField  = "[name properties? type]"
	grammarType   = `validator | keyword | [keyword props] | "ns/Entity"`
)

// F builds a raw field declaration: [name properties? type].
func F(parts ...any) []any { return parts }

// Parse walks a raw entity declaration and produces its canonical spec.
// The raw shape is [entityType, properties?, field*] where each field is
// [name, properties?, type]. Any shape violation fails with *GrammarError.
//
// Qualified entity keywords in type position are rewritten into Ref nodes;
// see Normalize for the foreign-key and dependency derivation.
func Parse(raw []any) (*EntitySpec, error) {
	if len(raw) == 0 {
		return nil, grammarErr(nil, grammarEntity, raw,
			"a declaration starts with a namespace-qualified entity type")
	}

	typ, ok := entityTypeOf(raw[0])
	if !ok {
		return nil, grammarErr([]string{"entity type"},
			`qualified keyword "ns/Entity"`, raw[0], "")
	}
	if !typ.IsQualified() {
		return nil, grammarErr([]string{"entity type"},
			`qualified keyword "ns/Entity"`, raw[0],
			fmt.Sprintf("qualify the entity type, e.g. %q", "app/"+string(typ)))
	}

	spec := &EntitySpec{Type: typ, Props: Props{}}

	rest := raw[1:]
	if len(rest) > 0 {
		if props, ok := propsOf(rest[0]); ok {
			spec.Props = props
			rest = rest[1:]
		}
	}

	seen := make(map[string]bool, len(rest))
	for i, rawField := range rest {
		path := []string{fmt.Sprintf("field %d", i+1)}

		fv, ok := rawField.([]any)
		if !ok {
			return nil, grammarErr(path, grammarField, rawField, "")
		}

		field, err := parseField(path, fv)
		if err != nil {
			return nil, err
		}
		if seen[field.Name] {
			return nil, grammarErr(path, "a unique field name", field.Name,
				fmt.Sprintf("field %q is declared more than once", field.Name))
		}
		seen[field.Name] = true
		spec.Fields = append(spec.Fields, *field)
	}

	return Normalize(spec), nil
}

// parseField parses a single raw field vector.
func parseField(path []string, fv []any) (*FieldSpec, error) {
	if len(fv) < 2 || len(fv) > 3 {
		return nil, grammarErr(path, grammarField, fv, "")
	}

	name, ok := fv[0].(string)
	if !ok || name == "" {
		return nil, grammarErr(append(path, "name"), "a non-empty string", fv[0], "")
	}

	field := &FieldSpec{Name: name, Props: Props{}}

	rawType := fv[1]
	if len(fv) == 3 {
		props, ok := propsOf(fv[1])
		if !ok {
			return nil, grammarErr(append(path, "properties"), "a property map", fv[1], "")
		}
		field.Props = props
		rawType = fv[2]
	}

	typ, err := parseFieldType(append(path, "type"), rawType)
	if err != nil {
		return nil, err
	}
	field.Type = typ

	return field, nil
}

// parseFieldType dispatches on the raw type tag. The result is always one
// of the four FieldType variants.
func parseFieldType(path []string, raw any) (FieldType, error) {
	switch v := raw.(type) {
	case Primitive, ParamPrimitive, Validator, Ref:
		// Already canonical. Re-parsing a canonical spec is a no-op.
		return v.(FieldType), nil

	case func(any) bool:
		return Validator{Check: v}, nil

	case string:
		return parseTypeKeyword(path, v)

	case EntityType:
		return parseTypeKeyword(path, string(v))

	case []any:
		if len(v) != 2 {
			return nil, grammarErr(path, "[keyword props]", raw, "")
		}
		kw, ok := v[0].(string)
		if !ok {
			return nil, grammarErr(path, "[keyword props]", raw, "")
		}
		kind, err := ParseKind(kw)
		if err != nil {
			return nil, grammarErr(path, "a type keyword", v[0],
				fmt.Sprintf("recognized keywords: %v", kindKeywords()))
		}
		props, ok := propsOf(v[1])
		if !ok {
			return nil, grammarErr(path, "[keyword props]", raw, "")
		}
		return ParamPrimitive{Kind: kind, Props: props}, nil

	default:
		return nil, grammarErr(path, grammarType, raw, "")
	}
}

// parseTypeKeyword distinguishes a qualified entity reference from a
// primitive type keyword.
func parseTypeKeyword(path []string, kw string) (FieldType, error) {
	if EntityType(kw).IsQualified() {
		return Ref{Target: EntityType(kw)}, nil
	}
	kind, err := ParseKind(kw)
	if err != nil {
		return nil, grammarErr(path, "a type keyword", kw,
			fmt.Sprintf("recognized keywords: %v", kindKeywords()))
	}
	return Primitive{Kind: kind}, nil
}

// Normalize brings a spec to canonical form and recomputes its dependency
// list. It is idempotent: normalizing a canonical spec yields an identical
// spec. Normalize mutates and returns its argument.
//
// Normalization rules:
//   - the transient "optional?" marker is rewritten to "optional"
//   - reference fields without an optional-relationship marker gain
//     "foreign-key?" true; optional relations never carry it
//   - Deps holds the targets of required reference fields, declaration
//     order, deduplicated
func Normalize(spec *EntitySpec) *EntitySpec {
	if spec.Props == nil {
		spec.Props = Props{}
	}

	spec.Deps = nil
	depSeen := make(map[EntityType]bool)

	for i := range spec.Fields {
		f := &spec.Fields[i]
		if f.Props == nil {
			f.Props = Props{}
		}

		if v, ok := f.Props[PropOptionalRaw]; ok {
			f.Props[PropOptional] = v
			delete(f.Props, PropOptionalRaw)
		}

		ref, isRef := f.Type.(Ref)
		if !isRef {
			continue
		}

		if f.IsOptionalRelation() {
			// Optional relations are not persisted and never force
			// initialization order.
			delete(f.Props, PropForeignKey)
			continue
		}

		f.Props[PropForeignKey] = true
		if !depSeen[ref.Target] {
			depSeen[ref.Target] = true
			spec.Deps = append(spec.Deps, ref.Target)
		}
	}

	return spec
}

// entityTypeOf accepts the two raw spellings of an entity type.
func entityTypeOf(v any) (EntityType, bool) {
	switch t := v.(type) {
	case EntityType:
		return t, true
	case string:
		return EntityType(t), true
	default:
		return "", false
	}
}

// propsOf accepts the two raw spellings of a property map and returns a
// private copy.
func propsOf(v any) (Props, bool) {
	var src map[string]any
	switch m := v.(type) {
	case Props:
		src = m
	case map[string]any:
		src = m
	default:
		return nil, false
	}
	out := make(Props, len(src))
	for k, val := range src {
		out[k] = val
	}
	return out, true
}
