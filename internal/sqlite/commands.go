package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/rulestore/internal/hierarchy"
	"github.com/mesh-intelligence/rulestore/pkg/types"
)

// apply runs cmd against an open write transaction. Integrity failures come
// back as *types.IntegrityError; anything else is a storage fault.
func apply(ctx context.Context, q querier, cmd types.Command) (types.Outcome, error) {
	var out types.Outcome
	var err error

	switch c := cmd.(type) {
	case types.AddGroup:
		enabled := true
		if c.Enabled != nil {
			enabled = *c.Enabled
		}
		out.GroupID, err = insertGroup(ctx, q, strings.TrimSpace(c.Name), enabled)

	case types.UpdateGroup:
		if err = requireGroup(ctx, q, c.Op(), c.GroupID); err == nil {
			out.Affected, err = updateGroup(ctx, q, c.GroupID, strings.TrimSpace(c.Name), c.Enabled)
		}

	case types.ToggleGroup:
		if err = requireGroup(ctx, q, c.Op(), c.GroupID); err == nil {
			out.Enabled, err = toggleGroup(ctx, q, c.GroupID)
			out.Affected = 1
		}

	case types.DeleteGroup:
		out.Deleted, err = deleteCascade(ctx, q, c.GroupID)

	case types.BatchGroups:
		out, err = batchGroups(ctx, q, c)

	case types.AddKeyword:
		if err = requireGroup(ctx, q, c.Op(), c.GroupID); err == nil {
			out.Affected, err = upsertKeyword(ctx, q, c.GroupID, strings.TrimSpace(c.Keyword))
		}

	case types.RemoveKeyword:
		out.Affected, err = deleteKeyword(ctx, q, c.GroupID, strings.TrimSpace(c.Keyword))

	case types.SetKeywordEnabled:
		if err = requireGroup(ctx, q, c.Op(), c.GroupID); err == nil {
			out.Affected, err = setKeywordEnabled(ctx, q, c.GroupID, strings.TrimSpace(c.Keyword), c.Enabled)
		}

	case types.AddEdge:
		out.Affected, err = addEdge(ctx, q, c.ParentID, c.ChildID)

	case types.RemoveEdge:
		out.Affected, err = deleteEdge(ctx, q, c.ParentID, c.ChildID)

	case types.MoveGroups:
		out, err = batchMove(ctx, q, c.NewParentID, c.ChildIDs)

	default:
		err = fmt.Errorf("%w: %T", types.ErrUnknownCommand, cmd)
	}
	return out, err
}

func requireGroup(ctx context.Context, q querier, op string, id int64) error {
	ok, err := groupExists(ctx, q, id)
	if err != nil {
		return err
	}
	if !ok {
		return &types.IntegrityError{Op: op, Err: fmt.Errorf("%w: %d", types.ErrGroupNotFound, id)}
	}
	return nil
}

// addEdge validates parent -> child against the current graph and inserts it.
// A parent of RootGroupID stores nothing.
func addEdge(ctx context.Context, q querier, parentID, childID int64) (int, error) {
	if parentID == childID {
		return 0, &types.IntegrityError{Op: types.OpAddEdge, Err: types.ErrSelfLoop}
	}
	if err := requireGroup(ctx, q, types.OpAddEdge, childID); err != nil {
		return 0, err
	}
	if parentID == types.RootGroupID {
		return 0, nil
	}
	if err := requireGroup(ctx, q, types.OpAddEdge, parentID); err != nil {
		return 0, err
	}
	cyc, err := hierarchy.WouldCycle(ctx, txEdges{q}, parentID, childID)
	if err != nil {
		return 0, err
	}
	if cyc {
		return 0, &types.IntegrityError{Op: types.OpAddEdge, Err: types.ErrCycle}
	}
	return insertEdge(ctx, q, parentID, childID)
}

// deleteCascade removes groupID and all of its descendants. The descendant
// set is computed before anything is deleted.
func deleteCascade(ctx context.Context, q querier, groupID int64) (int, error) {
	ok, err := groupExists(ctx, q, groupID)
	if err != nil || !ok {
		return 0, err
	}
	ids, err := hierarchy.Descendants(ctx, txEdges{q}, groupID)
	if err != nil {
		return 0, err
	}
	if err := deleteKeywordsOf(ctx, q, ids); err != nil {
		return 0, err
	}
	if err := deleteEdgesTouching(ctx, q, ids); err != nil {
		return 0, err
	}
	return deleteGroups(ctx, q, ids)
}

func batchGroups(ctx context.Context, q querier, c types.BatchGroups) (types.Outcome, error) {
	var out types.Outcome
	switch c.Action {
	case types.BatchEnable, types.BatchDisable:
		n, err := setGroupsEnabled(ctx, q, c.GroupIDs, c.Action == types.BatchEnable)
		out.Affected = n
		return out, err
	case types.BatchDelete:
		for _, id := range c.GroupIDs {
			n, err := deleteCascade(ctx, q, id)
			if err != nil {
				return out, err
			}
			out.Deleted += n
		}
		return out, nil
	default:
		return out, fmt.Errorf("%w: %q", types.ErrUnknownBatchAction, c.Action)
	}
}

// batchMove re-parents each child independently. Integrity failures are
// collected per child; storage failures abort the whole write.
func batchMove(ctx context.Context, q querier, newParentID int64, childIDs []int64) (types.Outcome, error) {
	out := types.Outcome{MoveErrors: []types.MoveError{}}
	for _, childID := range childIDs {
		err := moveOne(ctx, q, newParentID, childID)
		var ierr *types.IntegrityError
		switch {
		case err == nil:
			out.Moved++
		case errors.As(err, &ierr):
			out.MoveErrors = append(out.MoveErrors, types.MoveError{ChildID: childID, Error: ierr.Err.Error()})
		default:
			return out, err
		}
	}
	return out, nil
}

func moveOne(ctx context.Context, q querier, newParentID, childID int64) error {
	if childID == newParentID {
		return &types.IntegrityError{Op: types.OpMoveGroups, Err: types.ErrSelfLoop}
	}
	if err := requireGroup(ctx, q, types.OpMoveGroups, childID); err != nil {
		return err
	}
	if newParentID != types.RootGroupID {
		if err := requireGroup(ctx, q, types.OpMoveGroups, newParentID); err != nil {
			return err
		}
		cyc, err := hierarchy.WouldCycle(ctx, txEdges{q}, newParentID, childID)
		if err != nil {
			return err
		}
		if cyc {
			return &types.IntegrityError{Op: types.OpMoveGroups, Err: types.ErrCycle}
		}
	}
	if err := deleteParentEdges(ctx, q, childID); err != nil {
		return err
	}
	if newParentID == types.RootGroupID {
		return nil
	}
	_, err := insertEdge(ctx, q, newParentID, childID)
	return err
}
