package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrCollaboratorUnavailable marks a retriever, search provider, generator
	// or model endpoint that could not be reached.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

	// ErrMalformedJudgment marks model output that does not parse to one of
	// the allowed labels.
	ErrMalformedJudgment = errors.New("malformed judgment")

	// ErrInvalidRetries is returned by Run for a negative retry ceiling,
	// before any collaborator is called.
	ErrInvalidRetries = errors.New("max retries must be >= 0")
)

// StageError reports which node of the run failed.
type StageError struct {
	Stage Node
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Malformed builds an ErrMalformedJudgment for an unexpected label.
func Malformed(got Label, allowed []Label) error {
	return fmt.Errorf("%w: got %q, want one of %v", ErrMalformedJudgment, got, allowed)
}
