package system

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/weftlabs/weft/autowire"
	"github.com/weftlabs/weft/graph"
)

type fakeConn struct {
	closed bool
}

func TestSystemLifecycle(t *testing.T) {
	var initOrder []string
	conn := &fakeConn{}

	ix := autowire.NewIndex("myapp")
	ix.Register(autowire.NewScope("myapp.db",
		autowire.ComponentDef{
			Name:      "db-connection",
			Autowired: true,
			Build: func(ctx context.Context, deps map[string]any) (any, error) {
				initOrder = append(initOrder, "db-connection")
				return conn, nil
			},
			Halt: func(ctx context.Context, value any) error {
				value.(*fakeConn).closed = true
				return nil
			},
		},
	))
	ix.Register(autowire.NewScope("myapp.web",
		autowire.ComponentDef{
			Name:      "status",
			Autowired: true,
			Deps:      []string{"myapp.db/db-connection"},
			Build: func(ctx context.Context, deps map[string]any) (any, error) {
				initOrder = append(initOrder, "status")
				c, ok := deps["myapp.db/db-connection"].(*fakeConn)
				require.True(t, ok)
				require.False(t, c.closed)
				return map[string]any{"conn": c, "healthy": true}, nil
			},
		},
	))

	cfg, err := Configure(ix)
	require.NoError(t, err)

	s := New(cfg, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, s.Start(context.Background()))

	assert.Equal(t, []string{"db-connection", "status"}, initOrder)

	status, ok := s.Value("myapp.web/status")
	require.True(t, ok)
	assert.Equal(t, true, status.(map[string]any)["healthy"])

	require.NoError(t, s.Halt(context.Background()))
	assert.True(t, conn.closed)
}

func TestSystemParentAggregation(t *testing.T) {
	buildValue := func(v string) autowire.BuildFunc {
		return func(ctx context.Context, deps map[string]any) (any, error) {
			return v, nil
		}
	}

	t.Run("multiple children merge in discovery order", func(t *testing.T) {
		ix := autowire.NewIndex("myapp")
		ix.Register(autowire.NewScope("myapp.tests",
			autowire.ComponentDef{Name: "test-1", Autowired: true, Parent: "myapp/component", Build: buildValue("one")},
			autowire.ComponentDef{Name: "test-2", Autowired: true, Parent: "myapp/component", Build: buildValue("two")},
		))

		cfg, err := Configure(ix)
		require.NoError(t, err)

		s := New(cfg)
		require.NoError(t, s.Start(context.Background()))

		merged, ok := s.Value("myapp/component")
		require.True(t, ok)
		assert.Equal(t, []any{"one", "two"}, merged)
	})

	t.Run("a single child contributes its value directly", func(t *testing.T) {
		ix := autowire.NewIndex("myapp")
		ix.Register(autowire.NewScope("myapp.tests",
			autowire.ComponentDef{Name: "only", Autowired: true, Parent: "myapp/component", Build: buildValue("solo")},
		))

		cfg, err := Configure(ix)
		require.NoError(t, err)

		s := New(cfg)
		require.NoError(t, s.Start(context.Background()))

		merged, ok := s.Value("myapp/component")
		require.True(t, ok)
		assert.Equal(t, "solo", merged)
	})
}

func TestSystemMissingDependency(t *testing.T) {
	ix := autowire.NewIndex("myapp")
	ix.Register(autowire.NewScope("myapp.web",
		autowire.ComponentDef{
			Name:      "status",
			Autowired: true,
			Deps:      []string{"myapp.db/db-connection"},
			Build: func(ctx context.Context, deps map[string]any) (any, error) {
				t.Fatal("build must not run when resolution fails")
				return nil, nil
			},
		},
	))

	cfg, err := Configure(ix)
	require.NoError(t, err)

	// Building the configuration succeeds; the failure is deferred to the
	// resolution step.
	node, ok := cfg.Node("myapp.web/status")
	require.True(t, ok)
	assert.Equal(t, graph.Ref{Key: "myapp.db/db-connection"}, node.Deps["myapp.db/db-connection"])

	s := New(cfg)
	err = s.Start(context.Background())
	var mde *MissingDependencyError
	require.ErrorAs(t, err, &mde)
	assert.Equal(t, "myapp.db/db-connection", mde.Key)
	assert.Equal(t, "myapp.web/status", mde.WantedBy)
}

func TestSystemCycle(t *testing.T) {
	ix := autowire.NewIndex("myapp")
	ix.Register(autowire.NewScope("myapp",
		autowire.ComponentDef{Name: "a", Autowired: true, Deps: []string{"myapp/b"}},
		autowire.ComponentDef{Name: "b", Autowired: true, Deps: []string{"myapp/a"}},
	))

	cfg, err := Configure(ix)
	require.NoError(t, err)

	err = New(cfg).Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependency cycle detected")
}

func TestSystemHaltErrors(t *testing.T) {
	var halted []string
	halt := func(name string, fail bool) autowire.HaltFunc {
		return func(ctx context.Context, value any) error {
			halted = append(halted, name)
			if fail {
				return errors.New("boom")
			}
			return nil
		}
	}
	build := func(ctx context.Context, deps map[string]any) (any, error) { return nil, nil }

	ix := autowire.NewIndex("myapp")
	ix.Register(autowire.NewScope("myapp",
		autowire.ComponentDef{Name: "a", Autowired: true, Build: build, Halt: halt("a", false)},
		autowire.ComponentDef{Name: "b", Autowired: true, Deps: []string{"myapp/a"}, Build: build, Halt: halt("b", true)},
		autowire.ComponentDef{Name: "c", Autowired: true, Deps: []string{"myapp/b"}, Build: build, Halt: halt("c", false)},
	))

	cfg, err := Configure(ix)
	require.NoError(t, err)

	s := New(cfg)
	require.NoError(t, s.Start(context.Background()))

	err = s.Halt(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "halt myapp/b")

	// Every hook ran, in reverse initialization order, despite b failing.
	assert.Equal(t, []string{"c", "b", "a"}, halted)
}

func TestSystemRedisCacheComponent(t *testing.T) {
	srv := miniredis.RunT(t)

	ix := autowire.NewIndex("myapp")
	ix.Register(autowire.NewScope("myapp.cache",
		autowire.ComponentDef{
			Name:      "redis",
			Autowired: true,
			Build: func(ctx context.Context, deps map[string]any) (any, error) {
				client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
				if err := client.Ping(ctx).Err(); err != nil {
					return nil, err
				}
				return client, nil
			},
			Halt: func(ctx context.Context, value any) error {
				return value.(*redis.Client).Close()
			},
		},
	))
	ix.Register(autowire.NewScope("myapp.web",
		autowire.ComponentDef{
			Name:      "greeter",
			Autowired: true,
			Deps:      []string{"myapp.cache/redis"},
			Build: func(ctx context.Context, deps map[string]any) (any, error) {
				client := deps["myapp.cache/redis"].(*redis.Client)
				if err := client.Set(ctx, "greeting", "hello", 0).Err(); err != nil {
					return nil, err
				}
				return client.Get(ctx, "greeting").Result()
			},
		},
	))

	cfg, err := Configure(ix)
	require.NoError(t, err)

	s := New(cfg, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, s.Start(context.Background()))

	greeting, ok := s.Value("myapp.web/greeter")
	require.True(t, ok)
	assert.Equal(t, "hello", greeting)

	stored, err := srv.Get("greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", stored)

	require.NoError(t, s.Halt(context.Background()))
}
