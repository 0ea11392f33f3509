// Package config loads spiritcast settings from SPIRITCAST_* environment
// variables. Command-line flags override what is loaded here.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the environment-level settings shared by every command.
type Config struct {
	// DBPath is the SQLite file shared by the console and the displays.
	DBPath string `env:"SPIRITCAST_DB" envDefault:"spiritcast.db"`
	// CatalogPath loads a catalog file instead of the built-in one.
	CatalogPath string `env:"SPIRITCAST_CATALOG"`
	// Version is the default Bible version; empty uses the catalog default.
	Version string `env:"SPIRITCAST_VERSION"`
	// PollInterval is the display's fallback re-read period.
	PollInterval time.Duration `env:"SPIRITCAST_POLL_INTERVAL" envDefault:"500ms"`
	// Width is the rendered block width of the text display.
	Width int `env:"SPIRITCAST_WIDTH" envDefault:"60"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges env.Parse cannot express.
func (c Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("SPIRITCAST_DB must not be empty"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("SPIRITCAST_POLL_INTERVAL must be positive, got %s", c.PollInterval))
	}
	if c.Width <= 0 {
		errs = append(errs, fmt.Errorf("SPIRITCAST_WIDTH must be positive, got %d", c.Width))
	}
	return errors.Join(errs...)
}
