// Version counter, version log, and the full rule snapshot they describe.
package types

import "time"

// SystemVersion is the single version row. VersionID increases by exactly
// one per accepted write and never decreases.
type SystemVersion struct {
	VersionID     int64     `json:"version_id"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

// VersionLogEntry records the actor behind one accepted write. VersionID is
// the version produced by that write.
type VersionLogEntry struct {
	VersionID  int64     `json:"version_id"`
	ModifierID string    `json:"modifier_id"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Rules is the complete rule set at one version.
type Rules struct {
	VersionID int64           `json:"version_id"`
	Groups    []Group         `json:"groups"`
	Keywords  []Keyword       `json:"keywords"`
	Hierarchy []HierarchyEdge `json:"hierarchy"`
}

// TreeNode is a group with its keywords and nested children, as assembled
// from a Rules snapshot for display and keyword expansion.
type TreeNode struct {
	GroupID  int64       `json:"group_id"`
	Name     string      `json:"group_name"`
	Enabled  bool        `json:"is_enabled"`
	Keywords []Keyword   `json:"keywords"`
	Children []*TreeNode `json:"children"`
}
