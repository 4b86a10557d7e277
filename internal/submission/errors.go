package submission

import (
	"errors"
	"fmt"
)

// Common submission errors
var (
	// ErrNotReady is returned when a save is requested for an upload that
	// has not reached the ready-for-review state.
	ErrNotReady = errors.New("upload is not ready for saving")

	// ErrNothingToSave is returned when the approved course set is empty.
	ErrNothingToSave = errors.New("no validated courses to save")
)

// StageError wraps a pipeline stage failure with the state the upload
// halted in and whether the caller may retry the same upload.
type StageError struct {
	// Op is the operation that failed (e.g. "Prepare").
	Op string

	// State is the pipeline state the upload halted in.
	State State

	// Err is the underlying error.
	Err error

	// Retryable marks transient failures the caller may retry; retry is a
	// caller decision, the pipeline never retries on its own.
	Retryable bool
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("submission: %s halted at %s: %v", e.Op, e.State, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *StageError) Is(target error) bool {
	return errors.Is(e.Err, target)
}
