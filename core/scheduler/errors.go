package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is wrapped by every input validation failure.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInfeasible reports that the search proved no valid schedule exists.
	ErrInfeasible = errors.New("no valid schedule exists")
	// ErrNoSolution reports that the time budget ran out before any valid
	// schedule was found.
	ErrNoSolution = errors.New("time budget exhausted without a schedule")
)

// InputError locates a validation failure in the input record set.
type InputError struct {
	Kind  string // "train" or "track"
	Index int    // 0-based position in the input
	Err   error
}

func (e *InputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %d: %v", e.Kind, e.Index+1, e.Err)
}

// Unwrap exposes both ErrInvalidInput and the underlying cause.
func (e *InputError) Unwrap() []error { return []error{ErrInvalidInput, e.Err} }
