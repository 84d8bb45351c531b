package testsupport

import (
	"path/filepath"
	"testing"

	"velociplayer/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp paths per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.LibraryPath = filepath.Join(base, "data", "library.db")
	cfg.Paths.LockPath = filepath.Join(base, "run", "velociplayer.lock")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithOrdering sets captions.ordering on the test config.
func WithOrdering(ordering string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Captions.Ordering = ordering
	}
}

// WithoutLogDir disables the log file.
func WithoutLogDir() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.LogDir = ""
	}
}
