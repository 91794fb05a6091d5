// Write commands accepted by RuleStore.TryWrite. Each command is one logical
// change; the coordinator dispatches on the concrete type.
package types

import "strings"

// Command is a single logical change to the rule set. The set of commands is
// closed: only the types in this file implement it.
type Command interface {
	// Op names the command for logs, metrics, and the version log.
	Op() string

	// Validate checks the request shape before any transaction is opened.
	// It returns a *ValidationError on failure.
	Validate() error

	command()
}

// Command operation names.
const (
	OpAddGroup          = "add_group"
	OpUpdateGroup       = "update_group"
	OpToggleGroup       = "toggle_group"
	OpDeleteGroup       = "delete_group"
	OpBatchGroups       = "batch_groups"
	OpAddKeyword        = "add_keyword"
	OpRemoveKeyword     = "remove_keyword"
	OpSetKeywordEnabled = "set_keyword_enabled"
	OpAddEdge           = "add_edge"
	OpRemoveEdge        = "remove_edge"
	OpMoveGroups        = "move_groups"
)

// AddGroup creates a group. Enabled defaults to true when nil.
type AddGroup struct {
	Name    string
	Enabled *bool
}

// UpdateGroup renames a group and sets its enabled flag.
type UpdateGroup struct {
	GroupID int64
	Name    string
	Enabled bool
}

// ToggleGroup flips a group's enabled flag.
type ToggleGroup struct {
	GroupID int64
}

// DeleteGroup removes a group and everything beneath it.
type DeleteGroup struct {
	GroupID int64
}

// BatchAction selects what BatchGroups does to each group.
type BatchAction string

// Batch actions.
const (
	BatchEnable  BatchAction = "enable"
	BatchDisable BatchAction = "disable"
	BatchDelete  BatchAction = "delete"
)

// BatchGroups enables, disables, or cascade-deletes several groups at once.
type BatchGroups struct {
	GroupIDs []int64
	Action   BatchAction
}

// AddKeyword attaches a keyword to a group, enabling it if already present.
type AddKeyword struct {
	GroupID int64
	Keyword string
}

// RemoveKeyword detaches a keyword from a group.
type RemoveKeyword struct {
	GroupID int64
	Keyword string
}

// SetKeywordEnabled soft-disables or re-enables a keyword.
type SetKeywordEnabled struct {
	GroupID int64
	Keyword string
	Enabled bool
}

// AddEdge nests ChildID under ParentID. ParentID may be RootGroupID.
type AddEdge struct {
	ParentID int64
	ChildID  int64
}

// RemoveEdge removes the exact (ParentID, ChildID) edge.
type RemoveEdge struct {
	ParentID int64
	ChildID  int64
}

// MoveGroups re-parents each child under NewParentID, replacing all of its
// existing parent edges. Children are processed independently.
type MoveGroups struct {
	NewParentID int64
	ChildIDs    []int64
}

func (AddGroup) Op() string          { return OpAddGroup }
func (UpdateGroup) Op() string       { return OpUpdateGroup }
func (ToggleGroup) Op() string       { return OpToggleGroup }
func (DeleteGroup) Op() string       { return OpDeleteGroup }
func (BatchGroups) Op() string       { return OpBatchGroups }
func (AddKeyword) Op() string        { return OpAddKeyword }
func (RemoveKeyword) Op() string     { return OpRemoveKeyword }
func (SetKeywordEnabled) Op() string { return OpSetKeywordEnabled }
func (AddEdge) Op() string           { return OpAddEdge }
func (RemoveEdge) Op() string        { return OpRemoveEdge }
func (MoveGroups) Op() string        { return OpMoveGroups }

func (AddGroup) command()          {}
func (UpdateGroup) command()       {}
func (ToggleGroup) command()       {}
func (DeleteGroup) command()       {}
func (BatchGroups) command()       {}
func (AddKeyword) command()        {}
func (RemoveKeyword) command()     {}
func (SetKeywordEnabled) command() {}
func (AddEdge) command()           {}
func (RemoveEdge) command()        {}
func (MoveGroups) command()        {}

func (c AddGroup) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("group_name", ErrEmptyName)
	}
	return nil
}

func (c UpdateGroup) Validate() error {
	if c.GroupID <= 0 {
		return invalid("group_id", ErrInvalidGroupID)
	}
	if strings.TrimSpace(c.Name) == "" {
		return invalid("group_name", ErrEmptyName)
	}
	return nil
}

func (c ToggleGroup) Validate() error { return validGroupID("group_id", c.GroupID) }

func (c DeleteGroup) Validate() error { return validGroupID("group_id", c.GroupID) }

func (c BatchGroups) Validate() error {
	if len(c.GroupIDs) == 0 {
		return invalid("group_ids", ErrEmptyBatch)
	}
	for _, id := range c.GroupIDs {
		if err := validGroupID("group_ids", id); err != nil {
			return err
		}
	}
	switch c.Action {
	case BatchEnable, BatchDisable, BatchDelete:
		return nil
	default:
		return invalid("action", ErrUnknownBatchAction)
	}
}

func (c AddKeyword) Validate() error { return validKeyword(c.GroupID, c.Keyword) }

func (c RemoveKeyword) Validate() error { return validKeyword(c.GroupID, c.Keyword) }

func (c SetKeywordEnabled) Validate() error { return validKeyword(c.GroupID, c.Keyword) }

// Validate leaves self-loops to the write path, where they are reported as
// integrity errors like any other cycle.
func (c AddEdge) Validate() error { return validEdge(c.ParentID, c.ChildID) }

func (c RemoveEdge) Validate() error { return validEdge(c.ParentID, c.ChildID) }

func (c MoveGroups) Validate() error {
	if c.NewParentID < 0 {
		return invalid("new_parent_id", ErrInvalidGroupID)
	}
	if len(c.ChildIDs) == 0 {
		return invalid("child_ids", ErrEmptyBatch)
	}
	for _, id := range c.ChildIDs {
		if err := validGroupID("child_ids", id); err != nil {
			return err
		}
	}
	return nil
}

func validGroupID(field string, id int64) error {
	if id <= 0 {
		return invalid(field, ErrInvalidGroupID)
	}
	return nil
}

func validKeyword(groupID int64, keyword string) error {
	if err := validGroupID("group_id", groupID); err != nil {
		return err
	}
	if strings.TrimSpace(keyword) == "" {
		return invalid("keyword", ErrEmptyKeyword)
	}
	return nil
}

func validEdge(parentID, childID int64) error {
	if parentID < 0 {
		return invalid("parent_id", ErrInvalidGroupID)
	}
	return validGroupID("child_id", childID)
}
