package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/rulestore/pkg/types"
)

func sampleRules() *types.Rules {
	return &types.Rules{
		VersionID: 9,
		Groups: []types.Group{
			{GroupID: 1, Name: "food", Enabled: true},
			{GroupID: 2, Name: "fruit", Enabled: true},
			{GroupID: 3, Name: "citrus", Enabled: true},
			{GroupID: 4, Name: "snacks", Enabled: false},
			{GroupID: 5, Name: "drinks", Enabled: true},
		},
		Keywords: []types.Keyword{
			{Keyword: "bread", GroupID: 1, Enabled: true},
			{Keyword: "apple", GroupID: 2, Enabled: true},
			{Keyword: "durian", GroupID: 2, Enabled: false},
			{Keyword: "lemon", GroupID: 3, Enabled: true},
			{Keyword: "chips", GroupID: 4, Enabled: true},
			{Keyword: "juice", GroupID: 5, Enabled: true},
		},
		Hierarchy: edges([2]int64{1, 2}, [2]int64{2, 3}, [2]int64{1, 4}, [2]int64{5, 3}),
	}
}

func TestBuildTree(t *testing.T) {
	roots := BuildTree(sampleRules())
	require.Len(t, roots, 2)

	food := roots[0]
	assert.Equal(t, "food", food.Name)
	require.Len(t, food.Children, 2)
	assert.Equal(t, "fruit", food.Children[0].Name)
	assert.Equal(t, "snacks", food.Children[1].Name)
	require.Len(t, food.Children[0].Children, 1)
	assert.Equal(t, "citrus", food.Children[0].Children[0].Name)
	assert.Len(t, food.Children[0].Keywords, 2)

	drinks := roots[1]
	assert.Equal(t, "drinks", drinks.Name)
	require.Len(t, drinks.Children, 1)
	assert.Equal(t, "citrus", drinks.Children[0].Name, "multi-parent group appears under each parent")
	assert.Empty(t, drinks.Children[0].Children)
}

func TestBuildTreeEmpty(t *testing.T) {
	assert.Empty(t, BuildTree(nil))
	assert.Empty(t, BuildTree(&types.Rules{}))
}

func TestExpand(t *testing.T) {
	rules := sampleRules()

	tests := []struct {
		name   string
		inputs []string
		want   []string
	}{
		{"group name pulls subtree", []string{"fruit"}, []string{"apple", "lemon"}},
		{"root group pulls everything enabled", []string{"food"}, []string{"apple", "bread", "lemon"}},
		{"enabled keyword matches itself", []string{"juice"}, []string{"juice"}},
		{"disabled keyword ignored", []string{"durian"}, []string{}},
		{"disabled group hides keywords", []string{"snacks", "chips"}, []string{}},
		{"overlap deduplicated", []string{"citrus", "lemon", "drinks"}, []string{"juice", "lemon"}},
		{"unknown input", []string{"nothing"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expand(rules, tt.inputs))
		})
	}
}

// diamondChain links k diamonds top to bottom: each junction j has two
// children a and b, and both are parents of the next junction.
func diamondChain(k int) *types.Rules {
	rules := &types.Rules{}
	id := int64(1)
	rules.Groups = append(rules.Groups, types.Group{GroupID: id, Name: "top", Enabled: true})
	junction := id
	for i := 0; i < k; i++ {
		a, b, next := id+1, id+2, id+3
		id = next
		rules.Groups = append(rules.Groups,
			types.Group{GroupID: a, Name: "a", Enabled: true},
			types.Group{GroupID: b, Name: "b", Enabled: true},
			types.Group{GroupID: next, Name: "j", Enabled: true},
		)
		rules.Hierarchy = append(rules.Hierarchy, edges(
			[2]int64{junction, a}, [2]int64{junction, b},
			[2]int64{a, next}, [2]int64{b, next},
		)...)
		junction = next
	}
	rules.Keywords = []types.Keyword{{Keyword: "bottom", GroupID: junction, Enabled: true}}
	return rules
}

func TestBuildTreeSharesMultiParentNodes(t *testing.T) {
	roots := BuildTree(sampleRules())
	require.Len(t, roots, 2)
	fruit := roots[0].Children[0]
	assert.Same(t, fruit.Children[0], roots[1].Children[0])

	// 60 stacked diamonds would be 2^60 nodes if copied per parent.
	roots = BuildTree(diamondChain(60))
	require.Len(t, roots, 1)
	top := roots[0]
	require.Len(t, top.Children, 2)
	assert.Same(t, top.Children[0].Children[0], top.Children[1].Children[0])
}

func TestExpandDiamondChain(t *testing.T) {
	rules := diamondChain(60)
	assert.Equal(t, []string{"bottom"}, Expand(rules, []string{"top"}))
	assert.Equal(t, []string{"bottom"}, Expand(rules, []string{"bottom"}))
	assert.Equal(t, []string{"bottom"}, Expand(rules, []string{"j", "a"}))
}

func TestExpandNameMatchBelowKeywordMatch(t *testing.T) {
	// fruit only matches a keyword; citrus below it matches by name.
	rules := sampleRules()
	assert.Equal(t, []string{"apple", "lemon"}, Expand(rules, []string{"apple", "citrus"}))
}
