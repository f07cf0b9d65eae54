package workflow

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError covers malformed or missing input. Nothing is mutated.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// IncompleteError blocks submission of a pre-project below 100% completeness.
type IncompleteError struct {
	Percent int
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("pre-project is %d%% complete, missing: %v", e.Percent, e.Missing)
}

// InvalidTransitionError is a workflow operation attempted from a state that
// forbids it.
type InvalidTransitionError struct {
	Entity string
	ID     uint
	From   string
	Op     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s %d: cannot %s from status %q", e.Entity, e.ID, e.Op, e.From)
}

// NotAuthorizedError means the actor is not in the configured approver set
// for the attempted stage.
type NotAuthorizedError struct {
	UserID uint
	Op     string
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("user %d is not authorized to %s", e.UserID, e.Op)
}

// InvariantViolationError reports a non-zero remaining NOC budget. Remaining
// is positive for a shortfall and negative for an excess.
type InvariantViolationError struct {
	Remaining decimal.Decimal
}

func (e *InvariantViolationError) Error() string {
	if e.Remaining.IsNegative() {
		return fmt.Sprintf("budget over-allocated by %s", e.Remaining.Neg().StringFixed(2))
	}
	return fmt.Sprintf("budget under-allocated by %s", e.Remaining.StringFixed(2))
}

// AlreadyTransferredError means a project already exists for the pre-project.
type AlreadyTransferredError struct {
	PreProjectID uint
}

func (e *AlreadyTransferredError) Error() string {
	return fmt.Sprintf("pre-project %d has already been transferred", e.PreProjectID)
}

// AlreadyLockedError means the project is referenced by another open NOC.
type AlreadyLockedError struct {
	ProjectID uint
}

func (e *AlreadyLockedError) Error() string {
	return fmt.Sprintf("project %d is already referenced by an open NOC", e.ProjectID)
}
