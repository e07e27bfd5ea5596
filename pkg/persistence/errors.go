// Package persistence provides standardized error types for storage
// operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrWorkflowInactive indicates the workflow exists but is not runnable.
	ErrWorkflowInactive = errors.New("workflow is not active")

	// ErrWorkflowEmpty indicates the workflow has no nodes to execute.
	ErrWorkflowEmpty = errors.New("workflow has no nodes")

	// ErrExecutionNotFound indicates an execution record was not found.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrLeadNotFound indicates no lead matched a tenant-scoped lookup.
	ErrLeadNotFound = errors.New("lead not found")

	// ErrContactNotFound indicates no contact matched a tenant-scoped lookup.
	ErrContactNotFound = errors.New("contact not found")

	// ErrUnknownField indicates a lookup or update referenced a column the
	// entity does not have.
	ErrUnknownField = errors.New("unknown entity field")
)

// ExecutionError wraps execution-record errors with operation context.
type ExecutionError struct {
	Op          string // Operation being performed (e.g. "Create", "Update")
	ExecutionID string
	Err         error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s operation failed for execution %s: %v", e.Op, e.ExecutionID, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// NewExecutionError creates a wrapped execution error.
func NewExecutionError(op, executionID string, err error) *ExecutionError {
	return &ExecutionError{Op: op, ExecutionID: executionID, Err: err}
}

// IsWorkflowNotFound checks if an error indicates a missing workflow.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsWorkflowInactive checks if an error indicates an inactive workflow.
func IsWorkflowInactive(err error) bool {
	return errors.Is(err, ErrWorkflowInactive)
}

// IsWorkflowEmpty checks if an error indicates a workflow without nodes.
func IsWorkflowEmpty(err error) bool {
	return errors.Is(err, ErrWorkflowEmpty)
}

// IsExecutionNotFound checks if an error indicates a missing execution record.
func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}

// IsEntityNotFound checks if an error indicates a missing lead or contact.
func IsEntityNotFound(err error) bool {
	return errors.Is(err, ErrLeadNotFound) || errors.Is(err, ErrContactNotFound)
}
