// Rule entities: groups, the keywords they carry, and the hierarchy edges
// that nest them.
package types

// RootGroupID is the virtual parent of every top-level group. No group row
// exists for it and no hierarchy edge references it.
const RootGroupID int64 = 0

// Group is a named search group.
type Group struct {
	// GroupID is assigned by the store on creation (max existing id + 1).
	GroupID int64 `json:"group_id"`

	// Name is the display name; never blank.
	Name string `json:"group_name"`

	// Enabled is false for soft-disabled groups.
	Enabled bool `json:"is_enabled"`
}

// Keyword is a literal search term owned by exactly one group. The same text
// may appear in several groups; identity is (Keyword, GroupID).
type Keyword struct {
	Keyword string `json:"keyword"`
	GroupID int64  `json:"group_id"`
	Enabled bool   `json:"is_enabled"`
}

// HierarchyEdge nests ChildID under ParentID. A child may have several
// parents; the edge set is kept acyclic.
type HierarchyEdge struct {
	ParentID int64 `json:"parent_id"`
	ChildID  int64 `json:"child_id"`
}
