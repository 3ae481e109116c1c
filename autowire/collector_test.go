package autowire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	t.Run("gathers tagged definitions in discovery order", func(t *testing.T) {
		scopes := []*Scope{
			NewScope("myapp.db",
				ComponentDef{Name: "db-connection", Autowired: true},
				ComponentDef{Name: "migrate", Autowired: false},
			),
			NewScope("myapp.web",
				ComponentDef{Name: "status", Autowired: true, Deps: []string{"myapp.db/db-connection"}},
			),
		}

		c := Collect(scopes)
		assert.Equal(t, []string{"myapp.db/db-connection", "myapp.web/status"}, c.Order)
		assert.Len(t, c.Defs, 2)
		assert.NotContains(t, c.Defs, "myapp.db/migrate")
	})

	t.Run("keys are scope-qualified so names can repeat across scopes", func(t *testing.T) {
		scopes := []*Scope{
			NewScope("myapp.a", ComponentDef{Name: "cache", Autowired: true}),
			NewScope("myapp.b", ComponentDef{Name: "cache", Autowired: true}),
		}

		c := Collect(scopes)
		assert.Equal(t, []string{"myapp.a/cache", "myapp.b/cache"}, c.Order)
	})

	t.Run("duplicate key replaces but keeps position", func(t *testing.T) {
		scopes := []*Scope{
			NewScope("myapp.a",
				ComponentDef{Name: "cache", Autowired: true, Deps: []string{"old"}},
			),
			NewScope("myapp.z", ComponentDef{Name: "other", Autowired: true}),
			NewScope("myapp.a",
				ComponentDef{Name: "cache", Autowired: true, Deps: []string{"new"}},
			),
		}

		c := Collect(scopes)
		assert.Equal(t, []string{"myapp.a/cache", "myapp.z/other"}, c.Order)
		assert.Equal(t, []string{"new"}, c.Defs["myapp.a/cache"].Deps)
	})

	t.Run("empty input", func(t *testing.T) {
		c := Collect(nil)
		require.NotNil(t, c)
		assert.Empty(t, c.Order)
		assert.Empty(t, c.Defs)
	})
}
