package config

import "errors"

// Sentinel error kinds for this package. Match with errors.Is.
var (
	// ErrInvalidConfig wraps validation failures of a loaded Config.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps failures reading .env, YAML or environment sources.
	ErrLoadConfig = errors.New("load config failed")
)
