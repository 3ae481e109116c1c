// Package system is the reference lifecycle consumer of a component
// configuration. It resolves dependency placeholders, instantiates
// components in dependency order, merges parent aggregates, and tears
// everything down in reverse.
//
// Construction is synchronous and single-threaded: the whole graph is
// built before any component initializes, and there is no interleaving
// between the build and instantiation phases.
package system

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/weftlabs/weft/autowire"
	"github.com/weftlabs/weft/graph"
)

// System instantiates a component configuration.
type System struct {
	cfg    *graph.Config
	log    *zap.Logger
	values map[string]any
	order  []string // initialization order, for reverse halt
}

// Option configures a System.
type Option func(*System)

// WithLogger attaches a logger for lifecycle events.
func WithLogger(log *zap.Logger) Option {
	return func(s *System) { s.log = log }
}

// New creates a system for a configuration.
func New(cfg *graph.Config, opts ...Option) *System {
	s := &System{
		cfg:    cfg,
		log:    zap.NewNop(),
		values: make(map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configure produces the final component configuration for a root: scan,
// collect, build. The result is consumed wholesale by Start.
func Configure(ix *autowire.Index, root ...any) (*graph.Config, error) {
	scopes, err := ix.Scan(root...)
	if err != nil {
		return nil, err
	}
	return graph.Build(autowire.Collect(scopes)), nil
}

// Start resolves the configuration and initializes every component in
// dependency order. This is the single centralized point where wiring
// failures surface: a placeholder pointing at a key with no definition
// fails here with *MissingDependencyError, not earlier.
func (s *System) Start(ctx context.Context) error {
	// Resolution pass: every placeholder must have a target node.
	for _, key := range s.cfg.Order {
		for _, ref := range s.cfg.Nodes[key].Deps {
			if _, exists := s.cfg.Nodes[ref.Key]; !exists {
				return &MissingDependencyError{Key: ref.Key, WantedBy: key}
			}
		}
	}

	g := graph.NewDependencyGraph(s.cfg)
	order, err := g.TopologicalSort()
	if err != nil {
		return err
	}

	for _, key := range order {
		node := s.cfg.Nodes[key]

		if node.Synthetic {
			s.values[key] = s.mergeChildren(key)
			s.order = append(s.order, key)
			s.log.Debug("merged parent aggregate", zap.String("component", key))
			continue
		}

		deps := make(map[string]any, len(node.Deps))
		for depKey := range node.Deps {
			deps[depKey] = s.values[depKey]
		}

		value, err := s.initNode(ctx, node, deps)
		if err != nil {
			return fmt.Errorf("init %s: %w", key, err)
		}
		s.values[key] = value
		s.order = append(s.order, key)
		s.log.Debug("initialized component", zap.String("component", key))
	}

	return nil
}

// initNode builds one component value.
func (s *System) initNode(ctx context.Context, node *graph.Node, deps map[string]any) (any, error) {
	if node.Def.Build == nil {
		return nil, fmt.Errorf("component has no build function")
	}
	return node.Def.Build(ctx, deps)
}

// mergeChildren aggregates a parent slot: a single child contributes its
// value directly, several children an ordered sequence in discovery order.
func (s *System) mergeChildren(parent string) any {
	children := s.cfg.Children[parent]
	if len(children) == 1 {
		return s.values[children[0]]
	}
	merged := make([]any, 0, len(children))
	for _, child := range children {
		merged = append(merged, s.values[child])
	}
	return merged
}

// Value returns the initialized value for a component key.
func (s *System) Value(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Halt tears components down in reverse initialization order, invoking
// each definition's halt hook. All hooks run even if some fail; their
// errors are joined.
func (s *System) Halt(ctx context.Context) error {
	var errs []error
	for i := len(s.order) - 1; i >= 0; i-- {
		key := s.order[i]
		node := s.cfg.Nodes[key]
		if node.Def.Halt == nil {
			continue
		}
		if err := node.Def.Halt(ctx, s.values[key]); err != nil {
			s.log.Warn("halt failed", zap.String("component", key), zap.Error(err))
			errs = append(errs, fmt.Errorf("halt %s: %w", key, err))
			continue
		}
		s.log.Debug("halted component", zap.String("component", key))
	}
	s.order = nil
	return errors.Join(errs...)
}
