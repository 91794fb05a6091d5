package sqlite

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/rulestore/internal/metrics"
	"github.com/mesh-intelligence/rulestore/pkg/types"
)

func TestRules_EmptyStore(t *testing.T) {
	b := newTestBackend(t)
	rules, err := b.Rules(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), rules.VersionID)
	assert.NotNil(t, rules.Groups)
	assert.NotNil(t, rules.Keywords)
	assert.NotNil(t, rules.Hierarchy)
	assert.Empty(t, rules.Groups)
}

func TestRules_Ordering(t *testing.T) {
	b := newTestBackend(t)
	addGroups(t, b, "a", "b", "c")
	write(t, b, types.AddKeyword{GroupID: 2, Keyword: "zeta"})
	write(t, b, types.AddKeyword{GroupID: 1, Keyword: "mango"})
	write(t, b, types.AddKeyword{GroupID: 2, Keyword: "alpha"})
	write(t, b, types.AddEdge{ParentID: 3, ChildID: 1})
	write(t, b, types.AddEdge{ParentID: 2, ChildID: 1})

	rules, err := b.Rules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.Keyword{
		{Keyword: "mango", GroupID: 1, Enabled: true},
		{Keyword: "alpha", GroupID: 2, Enabled: true},
		{Keyword: "zeta", GroupID: 2, Enabled: true},
	}, rules.Keywords)
	assert.Equal(t, []types.HierarchyEdge{{ParentID: 2, ChildID: 1}, {ParentID: 3, ChildID: 1}}, rules.Hierarchy)
}

func TestRulesIfChanged(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	b := newTestBackend(t, WithMetrics(m))
	ctx := context.Background()
	addGroups(t, b, "a")

	rules, changed, err := b.RulesIfChanged(ctx, 1)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Nil(t, rules)

	rules, changed, err = b.RulesIfChanged(ctx, 0)
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, rules)
	assert.Equal(t, int64(1), rules.VersionID)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotsTotal.WithLabelValues("not_modified")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotsTotal.WithLabelValues("full")))
}

func TestHistory(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	for i, client := range []string{"alice", "bob", "carol"} {
		res := b.TryWrite(ctx, int64(i), client, types.AddGroup{Name: client})
		require.True(t, res.OK(), res.Err)
	}

	entries, err := b.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(2), entries[0].VersionID)
	assert.Equal(t, "bob", entries[0].ModifierID)
	assert.Equal(t, "carol", entries[1].ModifierID)
	assert.False(t, entries[1].UpdatedAt.IsZero())

	entries, err = b.History(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBuildConflictDoesNotMutate(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	addGroups(t, b, "a", "b")

	c, err := buildConflict(ctx, b.reader, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, c.UniqueModifiers)
	assert.Len(t, c.Latest.Groups, 2)

	v, err := b.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.VersionID)
}
