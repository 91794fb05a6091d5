package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/rulestore/pkg/types"
)

// Version returns the current system version.
func (b *Backend) Version(ctx context.Context) (types.SystemVersion, error) {
	_, reader, release, err := b.attachedPools()
	if err != nil {
		return types.SystemVersion{}, err
	}
	defer release()
	return readVersion(ctx, reader)
}

// Rules returns the full rule set read in one transaction.
func (b *Backend) Rules(ctx context.Context) (*types.Rules, error) {
	_, reader, release, err := b.attachedPools()
	if err != nil {
		return nil, err
	}
	defer release()

	rules, err := readSnapshot(ctx, reader)
	if err != nil {
		return nil, err
	}
	b.metrics.RecordSnapshot("full")
	return rules, nil
}

// RulesIfChanged skips building a snapshot when cachedVersion is current.
func (b *Backend) RulesIfChanged(ctx context.Context, cachedVersion int64) (*types.Rules, bool, error) {
	_, reader, release, err := b.attachedPools()
	if err != nil {
		return nil, false, err
	}
	defer release()

	v, err := readVersion(ctx, reader)
	if err != nil {
		return nil, false, err
	}
	if v.VersionID == cachedVersion {
		b.metrics.RecordSnapshot("not_modified")
		return nil, false, nil
	}
	rules, err := readSnapshot(ctx, reader)
	if err != nil {
		return nil, false, err
	}
	b.metrics.RecordSnapshot("full")
	return rules, true, nil
}

// History returns version log entries newer than afterVersion.
func (b *Backend) History(ctx context.Context, afterVersion int64) ([]types.VersionLogEntry, error) {
	_, reader, release, err := b.attachedPools()
	if err != nil {
		return nil, err
	}
	defer release()
	return listVersionLog(ctx, reader, afterVersion)
}

// readSnapshot assembles a consistent rule set in one read transaction.
func readSnapshot(ctx context.Context, db *sql.DB) (*types.Rules, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()
	return snapshotIn(ctx, tx)
}

func snapshotIn(ctx context.Context, q querier) (*types.Rules, error) {
	v, err := readVersion(ctx, q)
	if err != nil {
		return nil, err
	}
	groups, err := listGroups(ctx, q)
	if err != nil {
		return nil, err
	}
	keywords, err := listKeywords(ctx, q)
	if err != nil {
		return nil, err
	}
	edges, err := listEdges(ctx, q)
	if err != nil {
		return nil, err
	}
	return &types.Rules{
		VersionID: v.VersionID,
		Groups:    groups,
		Keywords:  keywords,
		Hierarchy: edges,
	}, nil
}

// buildConflict reads the latest rule set and counts distinct modifiers
// after base from the same read transaction. It never writes.
func buildConflict(ctx context.Context, db *sql.DB, base int64) (*types.Conflict, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin conflict snapshot: %w", err)
	}
	defer tx.Rollback()

	latest, err := snapshotIn(ctx, tx)
	if err != nil {
		return nil, err
	}
	n, err := countModifiersSince(ctx, tx, base)
	if err != nil {
		return nil, err
	}
	return &types.Conflict{Latest: latest, UniqueModifiers: n}, nil
}
