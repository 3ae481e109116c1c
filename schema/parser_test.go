package schema

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func productSpec() []any {
	return []any{
		"inventory/Product",
		Props{"table": "products"},
		F("id", Props{"primary-key?": true}, "uuid"),
		F("sku", Props{"identity?": true}, "string"),
		F("name", []any{"string", Props{"max-length": 80}}),
		F("vendor", Props{"many-to-one?": true}, "inventory/Vendor"),
		F("reviews", Props{"one-to-many?": true}, "inventory/Review"),
		F("notes", Props{"optional?": true}, "text"),
	}
}

func TestParse(t *testing.T) {
	t.Run("canonical shape", func(t *testing.T) {
		spec, err := Parse(productSpec())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if spec.Type != "inventory/Product" {
			t.Errorf("expected inventory/Product, got %s", spec.Type)
		}
		if spec.TableName() != "products" {
			t.Errorf("expected table products, got %s", spec.TableName())
		}
		if len(spec.Fields) != 6 {
			t.Fatalf("expected 6 fields, got %d", len(spec.Fields))
		}

		// Field order equals declaration order.
		order := []string{"id", "sku", "name", "vendor", "reviews", "notes"}
		for i, name := range order {
			if spec.Fields[i].Name != name {
				t.Errorf("field %d: expected %s, got %s", i, name, spec.Fields[i].Name)
			}
		}
	})

	t.Run("relationship fields become refs", func(t *testing.T) {
		spec, err := Parse(productSpec())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		vendor, ok := spec.Field("vendor")
		if !ok {
			t.Fatal("vendor field missing")
		}
		ref, ok := vendor.Type.(Ref)
		if !ok {
			t.Fatalf("vendor type should be Ref, got %T", vendor.Type)
		}
		if ref.Target != "inventory/Vendor" {
			t.Errorf("expected inventory/Vendor, got %s", ref.Target)
		}
		if !vendor.IsForeignKey() {
			t.Error("required relation should carry foreign-key?")
		}

		reviews, _ := spec.Field("reviews")
		if _, ok := reviews.Type.(Ref); !ok {
			t.Fatalf("reviews type should be Ref, got %T", reviews.Type)
		}
		if reviews.IsForeignKey() {
			t.Error("optional relation must not carry foreign-key?")
		}
	})

	t.Run("deps contain only required reference targets", func(t *testing.T) {
		spec, err := Parse(productSpec())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []EntityType{"inventory/Vendor"}
		if !reflect.DeepEqual(spec.Deps, want) {
			t.Errorf("expected deps %v, got %v", want, spec.Deps)
		}
	})

	t.Run("optional? normalizes to optional", func(t *testing.T) {
		spec, err := Parse(productSpec())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		notes, _ := spec.Field("notes")
		if !notes.IsOptional() {
			t.Error("notes should be optional")
		}
		if _, ok := notes.Props[PropOptionalRaw]; ok {
			t.Error("transient optional? marker should be removed")
		}
	})

	t.Run("validator type", func(t *testing.T) {
		positive := func(v any) bool {
			n, ok := v.(int)
			return ok && n > 0
		}
		spec, err := Parse([]any{
			"billing/Invoice",
			F("id", Props{"primary-key?": true}, "uuid"),
			F("amount", positive),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		amount, _ := spec.Field("amount")
		val, ok := amount.Type.(Validator)
		if !ok {
			t.Fatalf("amount type should be Validator, got %T", amount.Type)
		}
		if !val.Check(3) || val.Check(-1) {
			t.Error("validator predicate not preserved")
		}
	})

	t.Run("derived table name", func(t *testing.T) {
		spec, err := Parse([]any{
			"crm/CustomerAccount",
			F("id", Props{"primary-key?": true}, "uuid"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if spec.TableName() != "customer_account" {
			t.Errorf("expected customer_account, got %s", spec.TableName())
		}
	})
}

func TestParseGrammarErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  []any
		want string // substring of the rendered diff
	}{
		{
			name: "empty declaration",
			raw:  []any{},
			want: "[entityType properties? field*]",
		},
		{
			name: "unqualified entity type",
			raw:  []any{"Product"},
			want: "qualified keyword",
		},
		{
			name: "field not a vector",
			raw:  []any{"inventory/Product", "id"},
			want: "[name properties? type]",
		},
		{
			name: "field with too many elements",
			raw:  []any{"inventory/Product", F("id", Props{}, "uuid", "extra")},
			want: "[name properties? type]",
		},
		{
			name: "unknown type keyword",
			raw:  []any{"inventory/Product", F("id", "uuidd")},
			want: "recognized keywords",
		},
		{
			name: "unsupported type tag",
			raw:  []any{"inventory/Product", F("id", 42)},
			want: "validator | keyword",
		},
		{
			name: "duplicate field",
			raw: []any{"inventory/Product",
				F("id", "uuid"), F("id", "string")},
			want: "declared more than once",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			if err == nil {
				t.Fatal("expected grammar error")
			}
			var ge *GrammarError
			if !errors.As(err, &ge) {
				t.Fatalf("expected *GrammarError, got %T", err)
			}
			if !strings.Contains(ge.Diff(), tt.want) {
				t.Errorf("diff missing %q:\n%s", tt.want, ge.Diff())
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	spec, err := Parse(productSpec())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before := snapshotSpec(spec)
	Normalize(spec)
	after := snapshotSpec(spec)

	if !reflect.DeepEqual(before, after) {
		t.Errorf("normalize is not idempotent:\nbefore %#v\nafter  %#v", before, after)
	}
}

func TestReparseCanonicalSpec(t *testing.T) {
	spec, err := Parse(productSpec())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A canonical spec re-expressed as a raw declaration parses to the
	// same canonical form.
	raw := []any{spec.Type, spec.Props}
	for _, f := range spec.Fields {
		raw = append(raw, F(f.Name, f.Props, f.Type))
	}

	again, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(snapshotSpec(spec), snapshotSpec(again)) {
		t.Error("re-parsing a canonical spec changed it")
	}
}

// snapshotSpec captures the comparable portion of a spec. Props maps are
// copied so later normalization cannot alias the snapshot; validator
// predicates are functions and excluded from comparison.
func snapshotSpec(s *EntitySpec) map[string]any {
	copyProps := func(p Props) Props {
		out := make(Props, len(p))
		for k, v := range p {
			out[k] = v
		}
		return out
	}
	fields := make([]map[string]any, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = map[string]any{
			"name":  f.Name,
			"props": copyProps(f.Props),
			"type":  f.Type.String(),
		}
	}
	deps := make([]EntityType, len(s.Deps))
	copy(deps, s.Deps)
	return map[string]any{
		"type":   s.Type,
		"props":  copyProps(s.Props),
		"fields": fields,
		"deps":   deps,
	}
}
