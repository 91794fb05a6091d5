// Package sqlite implements the SQLite backend for the rule store.
//
// A Backend owns two connection pools on the same database file. The writer
// pool holds a single connection and begins every transaction with BEGIN
// IMMEDIATE, so writes are serialized within the process by the pool and
// across processes by SQLite's reserved lock. The reader pool is query-only
// and serves snapshots concurrently with the writer under WAL.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/rulestore/internal/logger"
	"github.com/mesh-intelligence/rulestore/internal/metrics"
	"github.com/mesh-intelligence/rulestore/pkg/types"
)

// DatabaseFile is the name of the SQLite file created in Config.DataDir.
const DatabaseFile = "rules.db"

var _ types.RuleStore = (*Backend)(nil)

// Backend implements types.RuleStore on SQLite.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	path     string
	writer   *sql.DB
	reader   *sql.DB

	log     zerolog.Logger
	metrics *metrics.Metrics
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used for write outcomes.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Backend) { b.log = logger.Component(l, "store") }
}

// WithMetrics sets the collectors updated by writes and reads.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Backend) { b.metrics = m }
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{log: logger.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	if b.metrics == nil {
		b.metrics = metrics.New(nil)
	}
	return b
}

// Attach opens the database in config.DataDir, creating the directory,
// the file, and the schema when missing. Existing data is kept.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dataDir, DatabaseFile)
	ctx := context.Background()

	writer, err := openPool(ctx, writerDSN(path, config.GetBusyTimeoutMS()))
	if err != nil {
		return fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	if err := createSchema(ctx, writer); err != nil {
		writer.Close()
		return err
	}

	reader, err := openPool(ctx, readerDSN(path, config.GetBusyTimeoutMS()))
	if err != nil {
		writer.Close()
		return fmt.Errorf("open reader: %w", err)
	}

	b.writer = writer
	b.reader = reader
	b.config = config
	b.path = path
	b.attached = true

	if v, err := readVersion(ctx, reader); err == nil {
		b.metrics.SetVersion(v.VersionID)
	}
	b.log.Debug().Str("path", path).Msg("store attached")
	return nil
}

// Detach closes both pools. After Detach, operations return
// ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	var firstErr error
	if err := b.reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}
	if err := b.writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}
	b.reader = nil
	b.writer = nil
	b.attached = false
	b.log.Debug().Str("path", b.path).Msg("store detached")
	return firstErr
}

// Path returns the database file path while attached.
func (b *Backend) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
}

func openPool(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// writerDSN sets the pragmas every writer connection needs. _txlock makes
// BeginTx issue BEGIN IMMEDIATE.
func writerDSN(path string, busyTimeoutMS int) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMS))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Set("_txlock", "immediate")
	return path + "?" + q.Encode()
}

// readerDSN opens query-only connections. WAL mode is persisted in the file
// by the writer, so readers do not set it.
func readerDSN(path string, busyTimeoutMS int) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMS))
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "query_only(1)")
	return path + "?" + q.Encode()
}

// attachedPools returns the pools under the read lock, or ErrStoreDetached.
// The caller must call release when done.
func (b *Backend) attachedPools() (writer, reader *sql.DB, release func(), err error) {
	b.mu.RLock()
	if !b.attached {
		b.mu.RUnlock()
		return nil, nil, nil, types.ErrStoreDetached
	}
	return b.writer, b.reader, b.mu.RUnlock, nil
}
