package testsupport

import (
	"path/filepath"
	"testing"

	"tagger/internal/config"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config with the repository defaults and a
// per-test session database location.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Session.DatabasePath = filepath.Join(t.TempDir(), "session.db")
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithTrackThreshold overrides the file-to-track matching threshold.
func WithTrackThreshold(v float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Matching.TrackThreshold = v
	}
}

// WithClusterThreshold overrides the clustering similarity threshold.
func WithClusterThreshold(v float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Matching.ClusterThreshold = v
	}
}
