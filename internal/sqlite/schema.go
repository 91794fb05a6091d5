package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Schema DDL. Statements are idempotent so Attach can run them on every open.
const (
	createGroups = `CREATE TABLE IF NOT EXISTS groups (
    group_id INTEGER PRIMARY KEY,
    group_name TEXT NOT NULL,
    is_enabled INTEGER NOT NULL DEFAULT 1
);`

	createKeywords = `CREATE TABLE IF NOT EXISTS keywords (
    keyword TEXT NOT NULL,
    group_id INTEGER NOT NULL,
    is_enabled INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (keyword, group_id),
    FOREIGN KEY (group_id) REFERENCES groups(group_id) ON DELETE CASCADE
);`

	createHierarchy = `CREATE TABLE IF NOT EXISTS hierarchy (
    parent_id INTEGER NOT NULL,
    child_id INTEGER NOT NULL,
    PRIMARY KEY (parent_id, child_id),
    CHECK (parent_id <> child_id),
    FOREIGN KEY (parent_id) REFERENCES groups(group_id) ON DELETE CASCADE,
    FOREIGN KEY (child_id) REFERENCES groups(group_id) ON DELETE CASCADE
);`

	createSystemVersion = `CREATE TABLE IF NOT EXISTS system_version (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    version_id INTEGER NOT NULL CHECK (version_id >= 0),
    last_updated_at TEXT NOT NULL
);`

	createVersionLog = `CREATE TABLE IF NOT EXISTS version_log (
    version_id INTEGER PRIMARY KEY,
    modifier_id TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
)

// Index DDL for parent lookups, keyword listing, and conflict reports.
const (
	idxKeywordsGroup   = `CREATE INDEX IF NOT EXISTS idx_keywords_group ON keywords(group_id);`
	idxHierarchyChild  = `CREATE INDEX IF NOT EXISTS idx_hierarchy_child ON hierarchy(child_id);`
	idxVersionLogActor = `CREATE INDEX IF NOT EXISTS idx_version_log_modifier ON version_log(modifier_id);`
)

const seedSystemVersion = `INSERT OR IGNORE INTO system_version (id, version_id, last_updated_at) VALUES (1, 0, ?)`

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createGroups,
	createKeywords,
	createHierarchy,
	createSystemVersion,
	createVersionLog,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxKeywordsGroup,
	idxHierarchyChild,
	idxVersionLogActor,
}

// createSchema creates missing tables and indexes and seeds the version row
// at 0, all in one transaction.
func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range schemaDDL {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	for _, stmt := range indexDDL {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, seedSystemVersion, formatTime(time.Now())); err != nil {
		return fmt.Errorf("seed system version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
