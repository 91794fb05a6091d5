package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mesh-intelligence/rulestore/internal/hierarchy"
	"github.com/mesh-intelligence/rulestore/pkg/types"
)

// JSONL file names used by Export and Import.
const (
	GroupsFile     = "groups.jsonl"
	KeywordsFile   = "keywords.jsonl"
	HierarchyFile  = "hierarchy.jsonl"
	VersionLogFile = "version_log.jsonl"
)

// OpImport names the version log entry and metrics series for Import.
const OpImport = "import"

// Export writes the rule set and version log from one read transaction into
// dir and returns the exported version.
func (b *Backend) Export(ctx context.Context, dir string) (int64, error) {
	_, reader, release, err := b.attachedPools()
	if err != nil {
		return 0, err
	}
	defer release()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create export dir: %w", err)
	}

	tx, err := reader.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin export: %w", err)
	}
	defer tx.Rollback()

	rules, err := snapshotIn(ctx, tx)
	if err != nil {
		return 0, err
	}
	log, err := listVersionLog(ctx, tx, 0)
	if err != nil {
		return 0, err
	}

	if err := writeJSONL(filepath.Join(dir, GroupsFile), rules.Groups); err != nil {
		return 0, fmt.Errorf("export groups: %w", err)
	}
	if err := writeJSONL(filepath.Join(dir, KeywordsFile), rules.Keywords); err != nil {
		return 0, fmt.Errorf("export keywords: %w", err)
	}
	if err := writeJSONL(filepath.Join(dir, HierarchyFile), rules.Hierarchy); err != nil {
		return 0, fmt.Errorf("export hierarchy: %w", err)
	}
	if err := writeJSONL(filepath.Join(dir, VersionLogFile), log); err != nil {
		return 0, fmt.Errorf("export version log: %w", err)
	}

	b.log.Info().Str("dir", dir).Int64("version_id", rules.VersionID).
		Int("groups", len(rules.Groups)).Msg("rules exported")
	return rules.VersionID, nil
}

// Import loads an export from dir into an empty store as one write. Records
// that are malformed, reference missing groups, or would close a cycle are
// skipped. The source version log is not replayed.
func (b *Backend) Import(ctx context.Context, dir, clientID string) (types.WriteResult, error) {
	start := time.Now()
	res := types.WriteResult{Op: OpImport}

	if strings.TrimSpace(clientID) == "" {
		return invalidResult(res, &types.ValidationError{Field: "client_id", Err: types.ErrEmptyClientID}), nil
	}

	groups, err := decodeJSONL[types.Group](filepath.Join(dir, GroupsFile))
	if err != nil {
		return res, err
	}
	keywords, err := decodeJSONL[types.Keyword](filepath.Join(dir, KeywordsFile))
	if err != nil {
		return res, err
	}
	edges, err := decodeJSONL[types.HierarchyEdge](filepath.Join(dir, HierarchyFile))
	if err != nil {
		return res, err
	}

	writer, _, release, err := b.attachedPools()
	if err != nil {
		return res, err
	}
	defer release()

	tx, err := writer.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	current, err := readVersion(ctx, tx)
	if err != nil {
		return res, err
	}
	existing, err := listGroups(ctx, tx)
	if err != nil {
		return res, err
	}
	if current.VersionID != 0 || len(existing) > 0 {
		return res, types.ErrStoreNotEmpty
	}
	res.VersionID = current.VersionID

	loaded, err := loadRecords(ctx, tx, groups, keywords, edges)
	if err != nil {
		return res, err
	}

	now := time.Now()
	next, err := bumpVersion(ctx, tx, current.VersionID, now)
	if err != nil {
		return res, err
	}
	if err := appendLog(ctx, tx, next, clientID, now); err != nil {
		return res, err
	}
	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("commit import: %w", err)
	}

	res.Status = types.StatusOK
	res.VersionID = next
	res.Outcome.Affected = loaded
	b.observe(res, current.VersionID, clientID, time.Since(start))
	return res, nil
}

// loadRecords inserts imported rows and returns how many were kept.
func loadRecords(ctx context.Context, q querier, groups []types.Group, keywords []types.Keyword, edges []types.HierarchyEdge) (int, error) {
	loaded := 0
	for _, g := range groups {
		g.Name = strings.TrimSpace(g.Name)
		if g.GroupID <= 0 || g.Name == "" {
			continue
		}
		ok, err := groupExists(ctx, q, g.GroupID)
		if err != nil {
			return 0, err
		}
		if ok {
			continue
		}
		if err := insertGroupWithID(ctx, q, g); err != nil {
			return 0, err
		}
		loaded++
	}

	for _, k := range keywords {
		k.Keyword = strings.TrimSpace(k.Keyword)
		if k.Keyword == "" {
			continue
		}
		ok, err := groupExists(ctx, q, k.GroupID)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		if err := insertKeyword(ctx, q, k); err != nil {
			return 0, err
		}
		loaded++
	}

	for _, e := range edges {
		if e.ParentID == e.ChildID || e.ParentID == types.RootGroupID {
			continue
		}
		parentOK, err := groupExists(ctx, q, e.ParentID)
		if err != nil {
			return 0, err
		}
		childOK, err := groupExists(ctx, q, e.ChildID)
		if err != nil {
			return 0, err
		}
		if !parentOK || !childOK {
			continue
		}
		cyc, err := hierarchy.WouldCycle(ctx, txEdges{q}, e.ParentID, e.ChildID)
		if err != nil {
			return 0, err
		}
		if cyc {
			continue
		}
		n, err := insertEdge(ctx, q, e.ParentID, e.ChildID)
		if err != nil {
			return 0, err
		}
		loaded += n
	}
	return loaded, nil
}
