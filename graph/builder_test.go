package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/autowire"
)

func collect(scopes ...*autowire.Scope) *autowire.Collection {
	return autowire.Collect(scopes)
}

func TestBuild(t *testing.T) {
	t.Run("every declared dependency becomes a placeholder", func(t *testing.T) {
		c := collect(autowire.NewScope("myapp.web",
			autowire.ComponentDef{
				Name:      "status",
				Autowired: true,
				Deps:      []string{"myapp.db/db-connection", "myapp.cache/redis"},
			},
		))

		cfg := Build(c)
		node, ok := cfg.Node("myapp.web/status")
		require.True(t, ok)
		assert.Equal(t, map[string]Ref{
			"myapp.db/db-connection": {Key: "myapp.db/db-connection"},
			"myapp.cache/redis":      {Key: "myapp.cache/redis"},
		}, node.Deps)
	})

	t.Run("placeholders are emitted even for unknown targets", func(t *testing.T) {
		c := collect(autowire.NewScope("myapp.web",
			autowire.ComponentDef{Name: "status", Autowired: true, Deps: []string{"myapp.db/missing"}},
		))

		cfg := Build(c)
		node, _ := cfg.Node("myapp.web/status")
		assert.Equal(t, Ref{Key: "myapp.db/missing"}, node.Deps["myapp.db/missing"])

		// The unknown target gets no node; resolution reports it later.
		_, ok := cfg.Node("myapp.db/missing")
		assert.False(t, ok)
	})

	t.Run("children aggregate under their parent slot in discovery order", func(t *testing.T) {
		c := collect(
			autowire.NewScope("myapp.tests",
				autowire.ComponentDef{Name: "test-1", Autowired: true, Parent: "myapp/component"},
				autowire.ComponentDef{Name: "test-2", Autowired: true, Parent: "myapp/component"},
			),
		)

		cfg := Build(c)
		assert.Equal(t, []string{"myapp.tests/test-1", "myapp.tests/test-2"},
			cfg.Children["myapp/component"])

		parent, ok := cfg.Node("myapp/component")
		require.True(t, ok)
		assert.True(t, parent.Synthetic)
		assert.Equal(t, []string{"myapp.tests/test-1", "myapp.tests/test-2", "myapp/component"}, cfg.Order)
	})

	t.Run("a parent with its own definition stays concrete", func(t *testing.T) {
		c := collect(
			autowire.NewScope("myapp",
				autowire.ComponentDef{Name: "pool", Autowired: true},
			),
			autowire.NewScope("myapp.workers",
				autowire.ComponentDef{Name: "w1", Autowired: true, Parent: "myapp/pool"},
			),
		)

		cfg := Build(c)
		parent, ok := cfg.Node("myapp/pool")
		require.True(t, ok)
		assert.False(t, parent.Synthetic)
		assert.Equal(t, []string{"myapp.workers/w1"}, cfg.Children["myapp/pool"])
	})
}
