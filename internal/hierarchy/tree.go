package hierarchy

import (
	"sort"

	"github.com/mesh-intelligence/rulestore/pkg/types"
)

// ruleIndex holds the lookups BuildTree and Expand share.
type ruleIndex struct {
	groups   map[int64]types.Group
	keywords map[int64][]types.Keyword
	graph    *Graph
}

func indexRules(rules *types.Rules) ruleIndex {
	idx := ruleIndex{
		groups:   make(map[int64]types.Group, len(rules.Groups)),
		keywords: make(map[int64][]types.Keyword),
		graph:    NewGraph(rules.Hierarchy),
	}
	for _, g := range rules.Groups {
		idx.groups[g.GroupID] = g
	}
	for _, k := range rules.Keywords {
		idx.keywords[k.GroupID] = append(idx.keywords[k.GroupID], k)
	}
	return idx
}

// roots returns the ids of groups without a parent edge, ascending.
func (idx ruleIndex) roots() []int64 {
	ids := make([]int64, 0, len(idx.groups))
	for id := range idx.groups {
		if !idx.graph.HasParent(id) {
			ids = append(ids, id)
		}
	}
	sortIDs(ids)
	return ids
}

// BuildTree assembles the nested view of a snapshot. Groups without a parent
// edge are roots. A group with several parents appears under each of them;
// every group is built once and its parents share the node.
func BuildTree(rules *types.Rules) []*types.TreeNode {
	if rules == nil {
		return []*types.TreeNode{}
	}
	idx := indexRules(rules)

	built := make(map[int64]*types.TreeNode, len(idx.groups))
	building := make(map[int64]bool)

	var build func(id int64) *types.TreeNode
	build = func(id int64) *types.TreeNode {
		if n, ok := built[id]; ok {
			return n
		}
		g := idx.groups[id]
		node := &types.TreeNode{
			GroupID:  g.GroupID,
			Name:     g.Name,
			Enabled:  g.Enabled,
			Keywords: idx.keywords[id],
			Children: []*types.TreeNode{},
		}
		if node.Keywords == nil {
			node.Keywords = []types.Keyword{}
		}
		building[id] = true
		for _, c := range idx.graph.children[id] {
			// Edges back into the current path only occur in malformed input.
			if _, ok := idx.groups[c]; !ok || building[c] {
				continue
			}
			node.Children = append(node.Children, build(c))
		}
		delete(building, id)
		built[id] = node
		return node
	}

	roots := []*types.TreeNode{}
	for _, id := range idx.roots() {
		roots = append(roots, build(id))
	}
	return roots
}

// Expand resolves search inputs against the rule hierarchy. An input equal
// to a group name yields every enabled keyword in that group and its enabled
// descendants. An input equal to an enabled keyword yields itself. Disabled
// groups hide their whole subtree. The result is deduplicated and sorted.
// Each group is visited at most once per mode, so shared subgroups cost
// nothing extra.
func Expand(rules *types.Rules, inputs []string) []string {
	if rules == nil {
		return []string{}
	}
	idx := indexRules(rules)

	wanted := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		wanted[in] = true
	}
	found := map[string]bool{}

	// collected groups contributed all their enabled keywords, which covers
	// anything matching could add below them.
	collected := map[int64]bool{}
	matched := map[int64]bool{}

	var collect func(id int64)
	collect = func(id int64) {
		if collected[id] {
			return
		}
		collected[id] = true
		g, ok := idx.groups[id]
		if !ok || !g.Enabled {
			return
		}
		for _, k := range idx.keywords[id] {
			if k.Enabled {
				found[k.Keyword] = true
			}
		}
		for _, c := range idx.graph.children[id] {
			collect(c)
		}
	}

	var match func(id int64)
	match = func(id int64) {
		if matched[id] || collected[id] {
			return
		}
		matched[id] = true
		g, ok := idx.groups[id]
		if !ok || !g.Enabled {
			return
		}
		if wanted[g.Name] {
			collect(id)
			return
		}
		for _, k := range idx.keywords[id] {
			if k.Enabled && wanted[k.Keyword] {
				found[k.Keyword] = true
			}
		}
		for _, c := range idx.graph.children[id] {
			match(c)
		}
	}
	for _, id := range idx.roots() {
		match(id)
	}

	out := make([]string, 0, len(found))
	for k := range found {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
