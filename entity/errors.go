package entity

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/weftlabs/weft/schema"
)

// UnknownEntityError is returned when validation or reference derivation
// touches an entity type that was never registered. Forward references are
// legal at declaration time; only resolving one at validation time against
// a still-missing target raises this.
type UnknownEntityError struct {
	Type schema.EntityType
}

// Error implements the error interface.
func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("entity %q is not registered", string(e.Type))
}

// NoPrimaryKeyError is returned when a reference schema is requested for an
// entity that declares no primary-key? field. A ref schema requires exactly
// one such field on the target.
type NoPrimaryKeyError struct {
	Type schema.EntityType
}

// Error implements the error interface.
func (e *NoPrimaryKeyError) Error() string {
	return fmt.Sprintf("entity %q has no primary-key field", string(e.Type))
}

// ValidationErrors contains per-field diagnostics for a record that failed
// entity schema validation.
type ValidationErrors struct {
	Entity schema.EntityType   `json:"entity"`
	Fields map[string][]string `json:"fields"`
}

// NewValidationErrors creates an empty ValidationErrors for an entity.
func NewValidationErrors(typ schema.EntityType) *ValidationErrors {
	return &ValidationErrors{
		Entity: typ,
		Fields: make(map[string][]string),
	}
}

// Add records a diagnostic for a field.
func (ve *ValidationErrors) Add(field, message string) {
	if ve.Fields == nil {
		ve.Fields = make(map[string][]string)
	}
	ve.Fields[field] = append(ve.Fields[field], message)
}

// HasErrors reports whether any diagnostics were recorded.
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Fields) > 0
}

// Count returns the total number of diagnostics across all fields.
func (ve *ValidationErrors) Count() int {
	count := 0
	for _, messages := range ve.Fields {
		count += len(messages)
	}
	return count
}

// Error implements the error interface.
func (ve *ValidationErrors) Error() string {
	if !ve.HasErrors() {
		return fmt.Sprintf("%s: validation failed", ve.Entity)
	}

	var messages []string
	for field, errs := range ve.Fields {
		for _, msg := range errs {
			messages = append(messages, fmt.Sprintf("  - %s: %s", field, msg))
		}
	}

	if len(messages) == 1 {
		return fmt.Sprintf("%s: validation failed: %s",
			ve.Entity, strings.TrimPrefix(messages[0], "  - "))
	}
	return fmt.Sprintf("%s: validation failed:\n%s",
		ve.Entity, strings.Join(messages, "\n"))
}

// MarshalJSON implements json.Marshaler.
func (ve *ValidationErrors) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Error  string              `json:"error"`
		Entity string              `json:"entity"`
		Fields map[string][]string `json:"fields"`
	}{
		Error:  "validation_failed",
		Entity: string(ve.Entity),
		Fields: ve.Fields,
	})
}
