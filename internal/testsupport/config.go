// Package testsupport centralizes shared test helpers: temp-directory
// configs, catalog stores with cleanup, seeded episodes, and a fake rendering
// engine.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"linguo/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.SourceDir = filepath.Join(base, "source")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Server.Bind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if err := os.MkdirAll(cfg.Paths.SourceDir, 0o755); err != nil {
		t.Fatalf("create source dir: %v", err)
	}
	return &cfg
}

// WithCacheDisabled turns off the generation cache on the test config.
func WithCacheDisabled() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Clips.UseCache = false
	}
}

// WithMaxSubtitles overrides the clip subtitle ceiling on the test config.
func WithMaxSubtitles(limit int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Clips.MaxSubtitles = limit
	}
}
