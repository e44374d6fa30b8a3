// Package testsupport provides shared helpers for package tests: temp-dir
// configs and pre-opened stores.
package testsupport

import (
	"path/filepath"
	"testing"

	"marquee/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.OMDb.APIKey = "test"
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Batch.RetryDelayMS = 0
	cfg.Batch.ItemDelayMS = 0

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithOMDbKey sets the OMDb API key on the test config.
func WithOMDbKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.OMDb.APIKey = key
	}
}
