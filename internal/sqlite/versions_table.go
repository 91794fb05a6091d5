package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mesh-intelligence/rulestore/pkg/types"
)

// readVersion returns the single system_version row.
func readVersion(ctx context.Context, q querier) (types.SystemVersion, error) {
	var (
		v       types.SystemVersion
		updated string
	)
	err := q.QueryRowContext(ctx,
		"SELECT version_id, last_updated_at FROM system_version WHERE id = 1",
	).Scan(&v.VersionID, &updated)
	if err != nil {
		return v, fmt.Errorf("read system version: %w", err)
	}
	v.LastUpdatedAt = parseTime(updated)
	return v, nil
}

// bumpVersion advances the counter from current to current+1. The WHERE
// clause guards against a caller that read a stale value.
func bumpVersion(ctx context.Context, q querier, current int64, now time.Time) (int64, error) {
	res, err := q.ExecContext(ctx,
		"UPDATE system_version SET version_id = version_id + 1, last_updated_at = ? WHERE id = 1 AND version_id = ?",
		formatTime(now), current,
	)
	if err != nil {
		return 0, fmt.Errorf("bump system version: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return 0, fmt.Errorf("bump system version: %w", err)
	}
	if n != 1 {
		return 0, fmt.Errorf("bump system version: version moved from %d", current)
	}
	return current + 1, nil
}

// appendLog records the modifier of a committed version.
func appendLog(ctx context.Context, q querier, versionID int64, modifierID string, now time.Time) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO version_log (version_id, modifier_id, updated_at) VALUES (?, ?, ?)",
		versionID, modifierID, formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("append version log: %w", err)
	}
	return nil
}

// countModifiersSince counts distinct actors that wrote after base.
func countModifiersSince(ctx context.Context, q querier, base int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT modifier_id) FROM version_log WHERE version_id > ?", base,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count modifiers: %w", err)
	}
	return n, nil
}

// listVersionLog returns log entries newer than after, oldest first.
func listVersionLog(ctx context.Context, q querier, after int64) ([]types.VersionLogEntry, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT version_id, modifier_id, updated_at FROM version_log WHERE version_id > ? ORDER BY version_id", after,
	)
	if err != nil {
		return nil, fmt.Errorf("list version log: %w", err)
	}
	defer rows.Close()

	entries := []types.VersionLogEntry{}
	for rows.Next() {
		var (
			e       types.VersionLogEntry
			updated string
		)
		if err := rows.Scan(&e.VersionID, &e.ModifierID, &updated); err != nil {
			return nil, fmt.Errorf("scan version log: %w", err)
		}
		e.UpdatedAt = parseTime(updated)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime returns the zero time for unparseable values.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
