package sqlite

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/rulestore/internal/hierarchy"
	"github.com/mesh-intelligence/rulestore/pkg/types"
)

// txEdges adapts a querier to hierarchy.Edges so graph walks see the
// uncommitted state of the current transaction.
type txEdges struct {
	q querier
}

var _ hierarchy.Edges = txEdges{}

func (e txEdges) Parents(ctx context.Context, groupID int64) ([]int64, error) {
	return queryIDs(ctx, e.q, "SELECT parent_id FROM hierarchy WHERE child_id = ? ORDER BY parent_id", groupID)
}

func (e txEdges) Children(ctx context.Context, groupID int64) ([]int64, error) {
	return queryIDs(ctx, e.q, "SELECT child_id FROM hierarchy WHERE parent_id = ? ORDER BY child_id", groupID)
}

// insertEdge stores parent -> child. An existing edge is left alone.
func insertEdge(ctx context.Context, q querier, parentID, childID int64) (int, error) {
	res, err := q.ExecContext(ctx,
		"INSERT OR IGNORE INTO hierarchy (parent_id, child_id) VALUES (?, ?)", parentID, childID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert edge %d->%d: %w", parentID, childID, err)
	}
	return rowsAffected(res)
}

func deleteEdge(ctx context.Context, q querier, parentID, childID int64) (int, error) {
	res, err := q.ExecContext(ctx,
		"DELETE FROM hierarchy WHERE parent_id = ? AND child_id = ?", parentID, childID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete edge %d->%d: %w", parentID, childID, err)
	}
	return rowsAffected(res)
}

// deleteParentEdges detaches childID from every parent.
func deleteParentEdges(ctx context.Context, q querier, childID int64) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM hierarchy WHERE child_id = ?", childID); err != nil {
		return fmt.Errorf("delete parents of %d: %w", childID, err)
	}
	return nil
}

// deleteEdgesTouching removes edges with either endpoint in ids.
func deleteEdgesTouching(ctx context.Context, q querier, ids []int64) error {
	_, err := eachIDChunk(ids, func(in string, args []any) (int, error) {
		if _, err := q.ExecContext(ctx,
			"DELETE FROM hierarchy WHERE parent_id IN "+in+" OR child_id IN "+in,
			append(args, args...)...,
		); err != nil {
			return 0, fmt.Errorf("delete edges: %w", err)
		}
		return 0, nil
	})
	return err
}

func listEdges(ctx context.Context, q querier) ([]types.HierarchyEdge, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT parent_id, child_id FROM hierarchy ORDER BY parent_id, child_id",
	)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	defer rows.Close()

	edges := []types.HierarchyEdge{}
	for rows.Next() {
		var e types.HierarchyEdge
		if err := rows.Scan(&e.ParentID, &e.ChildID); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
