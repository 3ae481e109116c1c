package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFrom(t *testing.T, yaml string) (*Config, error) {
	t.Helper()

	dir := t.TempDir()
	if yaml != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "weft.yml"), []byte(yaml), 0o644))
	}

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	return Load()
}

func TestLoad(t *testing.T) {
	t.Run("reads weft.yml", func(t *testing.T) {
		cfg, err := loadFrom(t, `
project_name: myapp
autowire:
  root: myapp.components
  permissive: true
database:
  url: postgres://localhost/myapp_dev
`)
		require.NoError(t, err)
		assert.Equal(t, "myapp", cfg.ProjectName)
		assert.Equal(t, "myapp.components", cfg.Autowire.Root)
		assert.True(t, cfg.Autowire.Permissive)
		assert.Equal(t, "postgres://localhost/myapp_dev", cfg.Database.URL)
	})

	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := loadFrom(t, "")
		require.NoError(t, err)
		assert.Empty(t, cfg.ProjectName)
		assert.Empty(t, cfg.Autowire.Root)
		assert.False(t, cfg.Autowire.Permissive)
	})

	t.Run("scan root without a project name is invalid", func(t *testing.T) {
		_, err := loadFrom(t, `
autowire:
  root: myapp.components
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "project_name is empty")
	})
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{URL: "postgres://localhost/from_file"}}
	assert.Equal(t, "postgres://localhost/from_file", cfg.DatabaseURL())

	t.Setenv("DATABASE_URL", "postgres://localhost/from_env")
	assert.Equal(t, "postgres://localhost/from_env", cfg.DatabaseURL())
}
