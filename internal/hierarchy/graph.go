package hierarchy

import (
	"context"
	"fmt"
	"sort"

	"github.com/mesh-intelligence/rulestore/pkg/types"
)

// Edges answers parent and child lookups for one group.
type Edges interface {
	Parents(ctx context.Context, groupID int64) ([]int64, error)
	Children(ctx context.Context, groupID int64) ([]int64, error)
}

// WouldCycle reports whether inserting the edge parent -> child would close a
// cycle. It walks upward from parent along parent-of edges; reaching child
// means child is already an ancestor of parent.
func WouldCycle(ctx context.Context, edges Edges, parent, child int64) (bool, error) {
	if parent == child {
		return true, nil
	}
	if parent == types.RootGroupID {
		return false, nil
	}

	visited := map[int64]bool{}
	stack := []int64{parent}
	for len(stack) > 0 {
		n := len(stack) - 1
		current := stack[n]
		stack = stack[:n]

		if current == child {
			return true, nil
		}
		if visited[current] {
			continue
		}
		visited[current] = true

		if err := ctx.Err(); err != nil {
			return false, err
		}
		parents, err := edges.Parents(ctx, current)
		if err != nil {
			return false, fmt.Errorf("lookup parents of %d: %w", current, err)
		}
		for _, p := range parents {
			if !visited[p] {
				stack = append(stack, p)
			}
		}
	}
	return false, nil
}

// Descendants returns root and every group reachable from it along child
// edges, in ascending id order. Shared descendants appear once.
func Descendants(ctx context.Context, edges Edges, root int64) ([]int64, error) {
	seen := map[int64]bool{root: true}
	queue := []int64{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		children, err := edges.Children(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("lookup children of %d: %w", current, err)
		}
		for _, c := range children {
			if !seen[c] {
				seen[c] = true
				queue = append(queue, c)
			}
		}
	}

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Graph is an in-memory edge set built from a snapshot. It implements Edges.
type Graph struct {
	parents  map[int64][]int64
	children map[int64][]int64
}

// NewGraph indexes edges by both endpoints. Adjacency lists are sorted so
// traversals are deterministic.
func NewGraph(edges []types.HierarchyEdge) *Graph {
	g := &Graph{
		parents:  make(map[int64][]int64),
		children: make(map[int64][]int64),
	}
	for _, e := range edges {
		g.children[e.ParentID] = append(g.children[e.ParentID], e.ChildID)
		g.parents[e.ChildID] = append(g.parents[e.ChildID], e.ParentID)
	}
	for _, list := range g.children {
		sortIDs(list)
	}
	for _, list := range g.parents {
		sortIDs(list)
	}
	return g
}

func (g *Graph) Parents(_ context.Context, groupID int64) ([]int64, error) {
	return g.parents[groupID], nil
}

func (g *Graph) Children(_ context.Context, groupID int64) ([]int64, error) {
	return g.children[groupID], nil
}

// HasParent reports whether groupID is the child of any edge.
func (g *Graph) HasParent(groupID int64) bool {
	return len(g.parents[groupID]) > 0
}

// Acyclic reports whether the edge set contains no directed cycle.
func (g *Graph) Acyclic() bool {
	const (
		unvisited = iota
		onPath
		done
	)
	state := map[int64]int{}

	var visit func(id int64) bool
	visit = func(id int64) bool {
		switch state[id] {
		case onPath:
			return false
		case done:
			return true
		}
		state[id] = onPath
		for _, c := range g.children[id] {
			if !visit(c) {
				return false
			}
		}
		state[id] = done
		return true
	}

	for id := range g.children {
		if !visit(id) {
			return false
		}
	}
	return true
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
