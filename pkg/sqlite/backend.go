// Package sqlite provides the public API for the SQLite rule store.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/rulestore/internal/metrics"
	"github.com/mesh-intelligence/rulestore/internal/sqlite"
	"github.com/mesh-intelligence/rulestore/pkg/types"
)

// Option configures a backend created by NewBackend.
type Option = sqlite.Option

// WithLogger sets the logger used for write outcomes.
func WithLogger(l zerolog.Logger) Option {
	return sqlite.WithLogger(l)
}

// WithRegisterer registers the store's collectors on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return sqlite.WithMetrics(metrics.New(reg))
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewBackend()
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: "/var/lib/rulestore",
//	})
//	defer store.Detach()
func NewBackend(opts ...Option) types.RuleStore {
	return sqlite.NewBackend(opts...)
}
