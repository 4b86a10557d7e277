package backend

import (
	"errors"
	"fmt"
)

// Common backend API errors
var (
	// ErrDuplicateGrade is returned when the server rejects an insert with
	// HTTP 409. It fails the single course, never the whole upload.
	ErrDuplicateGrade = errors.New("grade already recorded for this subject and period")

	// ErrMalformedResponse is returned when an endpoint that promises JSON
	// returns something else.
	ErrMalformedResponse = errors.New("malformed server response")

	// ErrRequestFailed is returned for transport-level failures.
	ErrRequestFailed = errors.New("backend request failed")
)

// APIError wraps backend call failures with enough context for the caller
// to decide between retry and abort.
type APIError struct {
	// Op is the operation that failed (e.g. "InsertGrade").
	Op string

	// Err is the underlying error.
	Err error

	// CourseCode is the course the call concerned, when per-course.
	CourseCode string

	// StatusCode is the HTTP status, when a response was received.
	StatusCode int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch {
	case e.CourseCode != "" && e.StatusCode != 0:
		return fmt.Sprintf("backend: %s failed for %s (HTTP %d): %v", e.Op, e.CourseCode, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("backend: %s failed (HTTP %d): %v", e.Op, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("backend: %s failed: %v", e.Op, e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *APIError) Is(target error) bool {
	return errors.Is(e.Err, target)
}
