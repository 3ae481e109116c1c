package entity

import (
	"fmt"

	"github.com/weftlabs/weft/graph"
	"github.com/weftlabs/weft/schema"
)

// PrepareComponent is the preparation boundary between entity declarations
// and the component system. It parses a raw declaration and returns the
// configuration entry a lifecycle manager consumes: the canonical spec
// under "spec" plus one reference placeholder per required dependency, so
// referenced entities initialize first.
//
// Grammar violations surface here, at preparation time, before any
// component runs.
func PrepareComponent(raw []any) (map[string]any, error) {
	spec, err := schema.Parse(raw)
	if err != nil {
		return nil, err
	}

	cfg := map[string]any{"spec": spec}
	for _, dep := range spec.Deps {
		cfg[string(dep)] = graph.Ref{Key: string(dep)}
	}
	return cfg, nil
}

// InitComponent is the initialization boundary: given a prepared
// configuration it registers the spec and returns the runtime handle.
func InitComponent(reg *Registry, cfg map[string]any) (*Entity, error) {
	spec, ok := cfg["spec"].(*schema.EntitySpec)
	if !ok {
		return nil, fmt.Errorf("entity: prepared config has no spec entry")
	}
	return reg.RegisterSpec(spec)
}
