package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds process configuration, populated from the environment.
type Config struct {
	// BaseDir is the root of the hierarchical store (projects, library,
	// legacy mirrors).
	BaseDir string `env:"WORKSHOP_BASE_DIR" envDefault:"output"`

	// LogMode selects the zap preset: "dev" or "prod".
	LogMode string `env:"WORKSHOP_LOG_MODE" envDefault:"dev"`

	// SearchIndex enables the derived SQLite full-text index over project
	// elements. Disabling it degrades search_elements to a directory scan.
	SearchIndex bool `env:"WORKSHOP_SEARCH_INDEX" envDefault:"true"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
