// Package config provides project configuration for hubgrid.
// This package is decoupled from CLI concerns so other tools can load
// the same configuration without pulling in cobra.
package config

import (
	"fmt"
	"strings"
)

// StoreConfig holds the backing record store configuration.
type StoreConfig struct {
	Driver string `koanf:"driver"` // postgres, sqlite

	// Postgres connection string.
	DSN string `koanf:"dsn"`

	// SQLite database file path.
	Path string `koanf:"path"`
}

// Validate checks if the store configuration is valid.
func (s *StoreConfig) Validate() error {
	switch strings.ToLower(s.Driver) {
	case "postgres":
		if s.DSN == "" {
			return fmt.Errorf("store.dsn is required for the postgres driver")
		}
	case "sqlite":
		if s.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite driver")
		}
	case "":
		return fmt.Errorf("store.driver is required")
	default:
		return fmt.Errorf("unknown store driver %q (available: postgres, sqlite)", s.Driver)
	}
	return nil
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // text, json
}

// HistoryConfig controls the undo/redo stacks.
type HistoryConfig struct {
	Limit int `koanf:"limit"`
}

// Config is the root hubgrid configuration.
type Config struct {
	Store   StoreConfig   `koanf:"store"`
	Logging LoggingConfig `koanf:"logging"`
	History HistoryConfig `koanf:"history"`

	Verbose bool `koanf:"verbose"`
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}
