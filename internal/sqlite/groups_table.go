package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/rulestore/pkg/types"
)

// insertGroup creates a group with the next id (max existing + 1).
func insertGroup(ctx context.Context, q querier, name string, enabled bool) (int64, error) {
	var id int64
	if err := q.QueryRowContext(ctx, "SELECT COALESCE(MAX(group_id), 0) + 1 FROM groups").Scan(&id); err != nil {
		return 0, fmt.Errorf("next group id: %w", err)
	}
	if _, err := q.ExecContext(ctx,
		"INSERT INTO groups (group_id, group_name, is_enabled) VALUES (?, ?, ?)",
		id, name, enabled,
	); err != nil {
		return 0, fmt.Errorf("insert group: %w", err)
	}
	return id, nil
}

// insertGroupWithID stores a group under a caller-chosen id. Used by import.
func insertGroupWithID(ctx context.Context, q querier, g types.Group) error {
	if _, err := q.ExecContext(ctx,
		"INSERT INTO groups (group_id, group_name, is_enabled) VALUES (?, ?, ?)",
		g.GroupID, g.Name, g.Enabled,
	); err != nil {
		return fmt.Errorf("insert group %d: %w", g.GroupID, err)
	}
	return nil
}

func groupExists(ctx context.Context, q querier, id int64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE group_id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check group %d: %w", id, err)
	}
	return true, nil
}

func updateGroup(ctx context.Context, q querier, id int64, name string, enabled bool) (int, error) {
	res, err := q.ExecContext(ctx,
		"UPDATE groups SET group_name = ?, is_enabled = ? WHERE group_id = ?",
		name, enabled, id,
	)
	if err != nil {
		return 0, fmt.Errorf("update group %d: %w", id, err)
	}
	return rowsAffected(res)
}

// toggleGroup flips is_enabled and returns the new value.
func toggleGroup(ctx context.Context, q querier, id int64) (bool, error) {
	if _, err := q.ExecContext(ctx,
		"UPDATE groups SET is_enabled = 1 - is_enabled WHERE group_id = ?", id,
	); err != nil {
		return false, fmt.Errorf("toggle group %d: %w", id, err)
	}
	var enabled bool
	if err := q.QueryRowContext(ctx,
		"SELECT is_enabled FROM groups WHERE group_id = ?", id,
	).Scan(&enabled); err != nil {
		return false, fmt.Errorf("read group %d: %w", id, err)
	}
	return enabled, nil
}

func setGroupsEnabled(ctx context.Context, q querier, ids []int64, enabled bool) (int, error) {
	return eachIDChunk(ids, func(in string, args []any) (int, error) {
		res, err := q.ExecContext(ctx,
			"UPDATE groups SET is_enabled = ? WHERE group_id IN "+in,
			append([]any{enabled}, args...)...,
		)
		if err != nil {
			return 0, fmt.Errorf("set groups enabled: %w", err)
		}
		return rowsAffected(res)
	})
}

func deleteGroups(ctx context.Context, q querier, ids []int64) (int, error) {
	return eachIDChunk(ids, func(in string, args []any) (int, error) {
		res, err := q.ExecContext(ctx, "DELETE FROM groups WHERE group_id IN "+in, args...)
		if err != nil {
			return 0, fmt.Errorf("delete groups: %w", err)
		}
		return rowsAffected(res)
	})
}

func listGroups(ctx context.Context, q querier) ([]types.Group, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT group_id, group_name, is_enabled FROM groups ORDER BY group_id",
	)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	groups := []types.Group{}
	for rows.Next() {
		var g types.Group
		if err := rows.Scan(&g.GroupID, &g.Name, &g.Enabled); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
