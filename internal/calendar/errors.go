package calendar

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a resource doesn't exist or is outside the caller's scope.
var ErrNotFound = errors.New("not found")

// ValidationError is a business-rule violation the caller can correct.
// An empty Field means the error concerns the request as a whole.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PersistenceConstraintError wraps a store constraint violation that got past validation.
// Reaching it means the validation layer has a gap.
type PersistenceConstraintError struct {
	Err error
}

func (e *PersistenceConstraintError) Error() string {
	return fmt.Sprintf("persistence constraint violated: %v", e.Err)
}

func (e *PersistenceConstraintError) Unwrap() error {
	return e.Err
}
