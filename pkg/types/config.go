package types

import "errors"

// Config holds backend selection and parameters for RuleStore.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// BusyTimeoutMS bounds how long a writer waits for the database lock
	// held by another process. Zero selects DefaultBusyTimeoutMS.
	BusyTimeoutMS int `json:"busy_timeout_ms,omitempty" yaml:"busy_timeout_ms,omitempty"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// DefaultBusyTimeoutMS is the lock wait used when Config.BusyTimeoutMS is zero.
const DefaultBusyTimeoutMS = 5000

// Config validation errors.
var (
	ErrBackendEmpty       = errors.New("backend must not be empty")
	ErrBackendUnknown     = errors.New("unknown backend")
	ErrBusyTimeoutInvalid = errors.New("busy timeout must not be negative")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.BusyTimeoutMS < 0 {
		return ErrBusyTimeoutInvalid
	}
	return nil
}

// GetBusyTimeoutMS returns the configured busy timeout or the default.
func (c Config) GetBusyTimeoutMS() int {
	if c.BusyTimeoutMS == 0 {
		return DefaultBusyTimeoutMS
	}
	return c.BusyTimeoutMS
}
