package types

// WriteStatus classifies the result of RuleStore.TryWrite.
type WriteStatus int

const (
	// StatusOK means the command committed and the version advanced by one.
	StatusOK WriteStatus = iota

	// StatusConflict means the caller's base version was stale. Nothing
	// changed; WriteResult.Conflict carries the current rule set.
	StatusConflict

	// StatusInvalid means the request failed validation before any
	// transaction was opened.
	StatusInvalid

	// StatusRejected means the command would have broken the hierarchy or
	// referenced a missing group. The write was rolled back.
	StatusRejected

	// StatusFault means an unexpected storage failure. The write was rolled
	// back and the version is unchanged.
	StatusFault
)

func (s WriteStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusConflict:
		return "conflict"
	case StatusInvalid:
		return "invalid"
	case StatusRejected:
		return "rejected"
	case StatusFault:
		return "fault"
	default:
		return "unknown"
	}
}

// MoveError reports one child that MoveGroups could not re-parent.
type MoveError struct {
	ChildID int64  `json:"child_id"`
	Error   string `json:"error"`
}

// Outcome carries the command-specific values produced by a committed write.
// Only the fields relevant to the command are set.
type Outcome struct {
	// GroupID is the id minted by AddGroup.
	GroupID int64 `json:"group_id,omitempty"`

	// Affected counts rows changed by update, toggle, keyword, edge, and
	// batch enable/disable commands.
	Affected int `json:"affected,omitempty"`

	// Deleted counts groups removed by DeleteGroup and batch delete.
	Deleted int `json:"deleted_count,omitempty"`

	// Enabled is the flag value left by ToggleGroup.
	Enabled bool `json:"is_enabled,omitempty"`

	// Moved and MoveErrors report MoveGroups per-child results.
	Moved      int         `json:"moved,omitempty"`
	MoveErrors []MoveError `json:"errors,omitempty"`
}

// Conflict is returned with StatusConflict.
type Conflict struct {
	// Latest is the rule set as of the conflict.
	Latest *Rules `json:"latest_data"`

	// UniqueModifiers counts distinct actors that wrote after the caller's
	// base version.
	UniqueModifiers int `json:"unique_modifiers"`
}

// WriteResult is the outcome of RuleStore.TryWrite. Every path, including
// faults, is reported here rather than as a separate error return.
type WriteResult struct {
	Status WriteStatus
	Op     string

	// VersionID is the new version on StatusOK. On StatusConflict it is the
	// version found in the store; otherwise it is the base version.
	VersionID int64

	Outcome  Outcome
	Conflict *Conflict

	// Err explains StatusInvalid, StatusRejected, and StatusFault.
	Err error
}

// OK reports whether the write committed.
func (r WriteResult) OK() bool { return r.Status == StatusOK }
