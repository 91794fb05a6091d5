package sqlite

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/rulestore/pkg/types"
)

// upsertKeyword attaches keyword to a group, re-enabling it if it already
// exists.
func upsertKeyword(ctx context.Context, q querier, groupID int64, keyword string) (int, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO keywords (keyword, group_id, is_enabled) VALUES (?, ?, 1)
         ON CONFLICT (keyword, group_id) DO UPDATE SET is_enabled = 1`,
		keyword, groupID,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert keyword %q: %w", keyword, err)
	}
	return rowsAffected(res)
}

func insertKeyword(ctx context.Context, q querier, k types.Keyword) error {
	if _, err := q.ExecContext(ctx,
		"INSERT OR IGNORE INTO keywords (keyword, group_id, is_enabled) VALUES (?, ?, ?)",
		k.Keyword, k.GroupID, k.Enabled,
	); err != nil {
		return fmt.Errorf("insert keyword %q: %w", k.Keyword, err)
	}
	return nil
}

func deleteKeyword(ctx context.Context, q querier, groupID int64, keyword string) (int, error) {
	res, err := q.ExecContext(ctx,
		"DELETE FROM keywords WHERE keyword = ? AND group_id = ?", keyword, groupID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete keyword %q: %w", keyword, err)
	}
	return rowsAffected(res)
}

func setKeywordEnabled(ctx context.Context, q querier, groupID int64, keyword string, enabled bool) (int, error) {
	res, err := q.ExecContext(ctx,
		"UPDATE keywords SET is_enabled = ? WHERE keyword = ? AND group_id = ?",
		enabled, keyword, groupID,
	)
	if err != nil {
		return 0, fmt.Errorf("set keyword %q enabled: %w", keyword, err)
	}
	return rowsAffected(res)
}

// deleteKeywordsOf removes every keyword owned by the given groups.
func deleteKeywordsOf(ctx context.Context, q querier, groupIDs []int64) error {
	_, err := eachIDChunk(groupIDs, func(in string, args []any) (int, error) {
		if _, err := q.ExecContext(ctx, "DELETE FROM keywords WHERE group_id IN "+in, args...); err != nil {
			return 0, fmt.Errorf("delete keywords: %w", err)
		}
		return 0, nil
	})
	return err
}

func listKeywords(ctx context.Context, q querier) ([]types.Keyword, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT keyword, group_id, is_enabled FROM keywords ORDER BY group_id, keyword",
	)
	if err != nil {
		return nil, fmt.Errorf("list keywords: %w", err)
	}
	defer rows.Close()

	keywords := []types.Keyword{}
	for rows.Next() {
		var k types.Keyword
		if err := rows.Scan(&k.Keyword, &k.GroupID, &k.Enabled); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		keywords = append(keywords, k)
	}
	return keywords, rows.Err()
}
