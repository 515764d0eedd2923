package errors

import (
	"errors"
	"fmt"
)

// Not-found sentinels, matched with errors.Is
var (
	ErrPayoutNotFound      = errors.New("payout not found")
	ErrBatchNotFound       = errors.New("payout batch not found")
	ErrTransactionNotFound = errors.New("pending transaction not found")
)

// InvalidStateTransitionError is returned when an operation is
// attempted from a status that does not permit it
type InvalidStateTransitionError struct {
	Entity    string
	ID        string
	From      string
	Attempted string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("%s %s cannot %s from status %q", e.Entity, e.ID, e.Attempted, e.From)
}

// NewInvalidStateTransitionError creates a new InvalidStateTransitionError
func NewInvalidStateTransitionError(entity, id, from, attempted string) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{Entity: entity, ID: id, From: from, Attempted: attempted}
}
