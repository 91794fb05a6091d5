package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandValidate(t *testing.T) {
	enabled := false
	tests := []struct {
		name      string
		cmd       Command
		wantErr   error
		wantField string
	}{
		{"add group", AddGroup{Name: "fruit"}, nil, ""},
		{"add group disabled", AddGroup{Name: "fruit", Enabled: &enabled}, nil, ""},
		{"add group blank name", AddGroup{Name: "   "}, ErrEmptyName, "group_name"},
		{"update group", UpdateGroup{GroupID: 1, Name: "veg"}, nil, ""},
		{"update group zero id", UpdateGroup{GroupID: 0, Name: "veg"}, ErrInvalidGroupID, "group_id"},
		{"update group blank name", UpdateGroup{GroupID: 1, Name: "\t"}, ErrEmptyName, "group_name"},
		{"toggle group negative id", ToggleGroup{GroupID: -3}, ErrInvalidGroupID, "group_id"},
		{"delete group", DeleteGroup{GroupID: 7}, nil, ""},
		{"batch empty", BatchGroups{Action: BatchEnable}, ErrEmptyBatch, "group_ids"},
		{"batch bad id", BatchGroups{GroupIDs: []int64{1, 0}, Action: BatchEnable}, ErrInvalidGroupID, "group_ids"},
		{"batch unknown action", BatchGroups{GroupIDs: []int64{1}, Action: "archive"}, ErrUnknownBatchAction, "action"},
		{"batch delete", BatchGroups{GroupIDs: []int64{1, 2}, Action: BatchDelete}, nil, ""},
		{"add keyword", AddKeyword{GroupID: 1, Keyword: "apple"}, nil, ""},
		{"add keyword blank", AddKeyword{GroupID: 1, Keyword: " "}, ErrEmptyKeyword, "keyword"},
		{"remove keyword no group", RemoveKeyword{Keyword: "apple"}, ErrInvalidGroupID, "group_id"},
		{"set keyword enabled", SetKeywordEnabled{GroupID: 2, Keyword: "pear"}, nil, ""},
		{"add edge under root", AddEdge{ParentID: RootGroupID, ChildID: 1}, nil, ""},
		{"add edge self loop passes validation", AddEdge{ParentID: 4, ChildID: 4}, nil, ""},
		{"add edge zero child", AddEdge{ParentID: 1, ChildID: 0}, ErrInvalidGroupID, "child_id"},
		{"remove edge negative parent", RemoveEdge{ParentID: -1, ChildID: 2}, ErrInvalidGroupID, "parent_id"},
		{"move", MoveGroups{NewParentID: 3, ChildIDs: []int64{1, 2}}, nil, ""},
		{"move to root", MoveGroups{NewParentID: RootGroupID, ChildIDs: []int64{1}}, nil, ""},
		{"move no children", MoveGroups{NewParentID: 3}, ErrEmptyBatch, "child_ids"},
		{"move negative parent", MoveGroups{NewParentID: -1, ChildIDs: []int64{1}}, ErrInvalidGroupID, "new_parent_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected *ValidationError, got %T", err)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestCommandOpNames(t *testing.T) {
	ops := map[string]bool{}
	for _, cmd := range []Command{
		AddGroup{}, UpdateGroup{}, ToggleGroup{}, DeleteGroup{}, BatchGroups{},
		AddKeyword{}, RemoveKeyword{}, SetKeywordEnabled{},
		AddEdge{}, RemoveEdge{}, MoveGroups{},
	} {
		op := cmd.Op()
		assert.NotEmpty(t, op)
		assert.False(t, ops[op], "duplicate op name %q", op)
		ops[op] = true
	}
	assert.Len(t, ops, 11)
}

func TestIntegrityErrorUnwraps(t *testing.T) {
	err := error(&IntegrityError{Op: OpAddEdge, Err: ErrCycle})
	assert.ErrorIs(t, err, ErrCycle)
	assert.Equal(t, "add_edge: edge would create a cycle", err.Error())
}

func TestValidationErrorMessage(t *testing.T) {
	assert.Equal(t, "keyword: keyword must not be empty", invalid("keyword", ErrEmptyKeyword).Error())
	assert.Equal(t, "client id must not be empty", (&ValidationError{Err: ErrEmptyClientID}).Error())
}

func TestWriteStatusString(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "conflict", StatusConflict.String())
	assert.Equal(t, "invalid", StatusInvalid.String())
	assert.Equal(t, "rejected", StatusRejected.String())
	assert.Equal(t, "fault", StatusFault.String())
	assert.Equal(t, "unknown", WriteStatus(42).String())
	assert.True(t, WriteResult{Status: StatusOK}.OK())
	assert.False(t, WriteResult{Status: StatusConflict}.OK())
}
