package types

import (
	"errors"
	"fmt"
)

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("rule store is detached")
	ErrAlreadyAttached = errors.New("rule store is already attached")
	ErrStoreNotEmpty   = errors.New("rule store is not empty")
)

// Validation errors, reported before any transaction is opened.
var (
	ErrEmptyClientID      = errors.New("client id must not be empty")
	ErrEmptyName          = errors.New("group name must not be empty")
	ErrEmptyKeyword       = errors.New("keyword must not be empty")
	ErrInvalidGroupID     = errors.New("group id must be positive")
	ErrEmptyBatch         = errors.New("batch must name at least one group")
	ErrUnknownBatchAction = errors.New("unknown batch action")
	ErrUnknownCommand     = errors.New("unknown command")
)

// Graph and data integrity errors, reported from inside a write.
var (
	ErrSelfLoop      = errors.New("group cannot be nested under itself")
	ErrCycle         = errors.New("edge would create a cycle")
	ErrGroupNotFound = errors.New("group not found")
)

// ValidationError reports a request rejected before entering the write path.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IntegrityError reports a mutation refused because it would break the
// hierarchy or reference a group that does not exist. The write is rolled
// back and the version is left untouched.
type IntegrityError struct {
	Op  string
	Err error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}
