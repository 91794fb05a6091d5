package types

import "context"

// RuleStore defines the interface for backend-agnostic rule storage.
// Callers attach to a backend, read snapshots, submit version-gated writes,
// and detach when done.
type RuleStore interface {
	// Attach connects the store to the backend described by config, creating
	// the data directory and schema when missing. Returns ErrAlreadyAttached
	// if called while attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	Detach() error

	// Version returns the current system version.
	Version(ctx context.Context) (SystemVersion, error)

	// Rules returns the complete rule set at the current version.
	Rules(ctx context.Context) (*Rules, error)

	// RulesIfChanged returns the rule set only when the current version
	// differs from cachedVersion. The bool reports whether it changed.
	RulesIfChanged(ctx context.Context, cachedVersion int64) (*Rules, bool, error)

	// History returns version log entries newer than afterVersion, oldest first.
	History(ctx context.Context, afterVersion int64) ([]VersionLogEntry, error)

	// TryWrite applies cmd if baseVersion is still current, recording
	// clientID as the modifier of the new version.
	TryWrite(ctx context.Context, baseVersion int64, clientID string, cmd Command) WriteResult

	// Export writes the rule set and version log as JSONL files into dir and
	// returns the exported version.
	Export(ctx context.Context, dir string) (int64, error)

	// Import loads JSONL files from dir into an empty store as a single
	// write attributed to clientID.
	Import(ctx context.Context, dir, clientID string) (WriteResult, error)
}
