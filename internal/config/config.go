// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load(ctx) layers .env, an optional YAML file and the environment on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
)

// Batch size limits for POST /scenarios/batch.
const (
	MinBatchSize = 1
	MaxBatchSize = 6
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches the logger to JSON output.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath selects the SQLite store. Empty keeps scenarios in memory.
	DBPath string `koanf:"db_path"`

	// FixturesPath points at the YAML athlete/event/route fixtures.
	FixturesPath string `koanf:"fixtures_path"`

	// CatalogPath points at the product catalog CSV used for kits.
	CatalogPath string `koanf:"catalog_path"`

	// DedupeSize bounds the in-memory scenario hash index.
	DedupeSize int `koanf:"dedupe_size"`

	// BatchConcurrency caps concurrent builds within one batch.
	BatchConcurrency int `koanf:"batch_concurrency"`

	// MaxBatchSize caps the number of inputs per batch request.
	MaxBatchSize int `koanf:"max_batch_size"`

	// GuardrailSeed fixes the guardrail RNG seed. Zero seeds from the system.
	GuardrailSeed uint64 `koanf:"guardrail_seed"`

	// ShutdownTimeoutSec bounds graceful HTTP shutdown.
	ShutdownTimeoutSec int `koanf:"shutdown_timeout_sec"`
}

// New creates a Config with defaults. Context is accepted first to follow
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		FixturesPath:       "fixtures.yaml",
		CatalogPath:        "products.csv",
		DedupeSize:         50_000,
		BatchConcurrency:   min(runtime.NumCPU(), MaxBatchSize),
		MaxBatchSize:       MaxBatchSize,
		ShutdownTimeoutSec: 10,
	}
}

// Validate rejects unusable settings.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !validLevel(c.LogLevel):
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	case c.BatchConcurrency <= 0:
		return fmt.Errorf("%w: batch_concurrency must be positive", ErrInvalidConfig)
	case c.MaxBatchSize < MinBatchSize || c.MaxBatchSize > MaxBatchSize:
		return fmt.Errorf("%w: max_batch_size must be within [%d,%d]", ErrInvalidConfig, MinBatchSize, MaxBatchSize)
	case c.ShutdownTimeoutSec < 0:
		return fmt.Errorf("%w: shutdown_timeout_sec must not be negative", ErrInvalidConfig)
	}
	return nil
}

func validLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return true
	default:
		return false
	}
}
