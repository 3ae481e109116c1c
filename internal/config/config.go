// Package config loads Weft project configuration from weft.yml.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config represents the Weft project configuration.
type Config struct {
	ProjectName string         `mapstructure:"project_name"`
	Autowire    AutowireConfig `mapstructure:"autowire"`
	Database    DatabaseConfig `mapstructure:"database"`
}

// AutowireConfig configures scope scanning.
type AutowireConfig struct {
	// Root is the default scan root; empty means the whole project.
	Root string `mapstructure:"root"`

	// Permissive disables defensive typing on scan input.
	Permissive bool `mapstructure:"permissive"`
}

// DatabaseConfig represents database configuration.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// Load loads the configuration from weft.yml or weft.yaml in the working
// directory, falling back to defaults and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("autowire.root", "")
	v.SetDefault("autowire.permissive", false)

	v.SetConfigName("weft")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DatabaseURL returns the database URL from the environment or config.
func (c *Config) DatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return c.Database.URL
}

// validateConfig validates the configuration.
func validateConfig(cfg *Config) error {
	if cfg.ProjectName == "" && cfg.Autowire.Root != "" {
		return fmt.Errorf("autowire.root is set but project_name is empty")
	}
	return nil
}
