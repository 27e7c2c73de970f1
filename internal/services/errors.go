// internal/services/errors.go
package services

import (
	"errors"
	"fmt"

	"github.com/taot23/aetlicencas/internal/models"
)

// Caller-input failures surfaced verbatim to handlers. All of them are
// detected before any write is persisted.
var (
	ErrNotFound            = errors.New("record not found")
	ErrForbidden           = errors.New("operation not permitted for this user")
	ErrNotADraft           = errors.New("request has already been submitted")
	ErrConflict            = errors.New("request was modified concurrently")
	ErrMissingValidity     = errors.New("approval requires a validity date")
	ErrEmptyStateSelection = errors.New("at least one state must be requested")
)

// UnknownStateError reports a state code outside the request's requested
// states.
type UnknownStateError struct {
	State string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("state %s is not among the requested states", e.State)
}

// InvalidTransitionError reports an illegal per-state status move.
type InvalidTransitionError struct {
	State string
	From  models.StateStatus
	To    models.StateStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("state %s cannot move from %s to %s", e.State, e.From, e.To)
}
