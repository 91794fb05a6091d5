package httpapi

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mesh-intelligence/rulestore/pkg/types"
)

// requestValidate checks decoded request bodies. gin's binding tags are not
// used so the notblank rule lives on one validator instance.
var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New()
	_ = requestValidate.RegisterValidation("notblank", validateNotBlank)
}

// validateNotBlank rejects strings that are empty after trimming whitespace.
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// writeEnvelope carries the optimistic-concurrency fields every write needs.
type writeEnvelope struct {
	BaseVersion *int64 `json:"base_version" validate:"required,min=0"`
	ClientID    string `json:"client_id" validate:"required,notblank"`
}

func (w writeEnvelope) envelope() writeEnvelope { return w }

// writeRequest is implemented by every POST body through the embedded
// writeEnvelope.
type writeRequest interface {
	envelope() writeEnvelope
	command() types.Command
}

type addGroupRequest struct {
	writeEnvelope
	GroupName string `json:"group_name" validate:"required,notblank"`
	IsEnabled *bool  `json:"is_enabled"`
}

func (r addGroupRequest) command() types.Command {
	return types.AddGroup{Name: r.GroupName, Enabled: r.IsEnabled}
}

type updateGroupRequest struct {
	writeEnvelope
	GroupID   int64  `json:"group_id" validate:"required,gt=0"`
	GroupName string `json:"group_name" validate:"required,notblank"`
	IsEnabled *bool  `json:"is_enabled" validate:"required"`
}

func (r updateGroupRequest) command() types.Command {
	return types.UpdateGroup{GroupID: r.GroupID, Name: r.GroupName, Enabled: *r.IsEnabled}
}

type groupIDRequest struct {
	writeEnvelope
	GroupID int64 `json:"group_id" validate:"required,gt=0"`
}

type toggleGroupRequest struct{ groupIDRequest }

func (r toggleGroupRequest) command() types.Command {
	return types.ToggleGroup{GroupID: r.GroupID}
}

type deleteGroupRequest struct{ groupIDRequest }

func (r deleteGroupRequest) command() types.Command {
	return types.DeleteGroup{GroupID: r.GroupID}
}

type batchGroupsRequest struct {
	writeEnvelope
	GroupIDs []int64 `json:"group_ids" validate:"required,min=1,dive,gt=0"`
	Action   string  `json:"action" validate:"required,oneof=enable disable delete"`
}

func (r batchGroupsRequest) command() types.Command {
	return types.BatchGroups{GroupIDs: r.GroupIDs, Action: types.BatchAction(r.Action)}
}

type keywordRequest struct {
	writeEnvelope
	GroupID int64  `json:"group_id" validate:"required,gt=0"`
	Keyword string `json:"keyword" validate:"required,notblank"`
}

type addKeywordRequest struct{ keywordRequest }

func (r addKeywordRequest) command() types.Command {
	return types.AddKeyword{GroupID: r.GroupID, Keyword: r.Keyword}
}

type removeKeywordRequest struct{ keywordRequest }

func (r removeKeywordRequest) command() types.Command {
	return types.RemoveKeyword{GroupID: r.GroupID, Keyword: r.Keyword}
}

type enableKeywordRequest struct {
	keywordRequest
	IsEnabled *bool `json:"is_enabled" validate:"required"`
}

func (r enableKeywordRequest) command() types.Command {
	return types.SetKeywordEnabled{GroupID: r.GroupID, Keyword: r.Keyword, Enabled: *r.IsEnabled}
}

// Parent ids may be 0 (the virtual root), so they are pointers to tell a
// missing field from an explicit root.
type edgeRequest struct {
	writeEnvelope
	ParentID *int64 `json:"parent_id" validate:"required,min=0"`
	ChildID  int64  `json:"child_id" validate:"required,gt=0"`
}

type addEdgeRequest struct{ edgeRequest }

func (r addEdgeRequest) command() types.Command {
	return types.AddEdge{ParentID: *r.ParentID, ChildID: r.ChildID}
}

type removeEdgeRequest struct{ edgeRequest }

func (r removeEdgeRequest) command() types.Command {
	return types.RemoveEdge{ParentID: *r.ParentID, ChildID: r.ChildID}
}

type moveGroupsRequest struct {
	writeEnvelope
	NewParentID *int64  `json:"new_parent_id" validate:"required,min=0"`
	ChildIDs    []int64 `json:"child_ids" validate:"required,min=1,dive,gt=0"`
}

func (r moveGroupsRequest) command() types.Command {
	return types.MoveGroups{NewParentID: *r.NewParentID, ChildIDs: r.ChildIDs}
}
