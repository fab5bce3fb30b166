package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAggregateNotFound is returned when loading a stream with no events.
	// Callers may recover by creating the aggregate (the project index does).
	ErrAggregateNotFound = errors.New("aggregate not found")

	// ErrConcurrencyConflict is returned when an append's expected version
	// does not match the stream's current version. The caller must reload
	// and retry.
	ErrConcurrencyConflict = errors.New("concurrency conflict")

	// ErrProjectionInconsistency flags an index state that diverges from the
	// Project streams. Under the runner's atomic tracking contract this
	// indicates a bug, not a user error.
	ErrProjectionInconsistency = errors.New("projection inconsistency")

	// ErrProjectDeleted rejects mutations on a logically deleted project.
	ErrProjectDeleted = errors.New("project is deleted")

	// ErrDocumentNotInProject rejects document operations for ids the
	// project does not contain.
	ErrDocumentNotInProject = errors.New("document not in project")
)

// ValidationError marks malformed command input, rejected before any event
// is constructed.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Msg
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a boundary validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
