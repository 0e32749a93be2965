package engine

import (
	"errors"
	"fmt"
)

// Common engine errors
var (
	// ErrSessionAlreadyActive is returned by StartSession when a session
	// is already open. Sessions are never auto-closed; the caller must end
	// the active session first.
	ErrSessionAlreadyActive = errors.New("a study session is already active")

	// ErrNoActiveSession is returned by session-scoped mutations when no
	// session is active.
	ErrNoActiveSession = errors.New("no active study session")
)

// PersistenceError wraps a failure of the storage collaborator. The
// in-memory mutation it follows has already been applied and remains
// authoritative; callers should surface the error as a warning, not roll
// anything back. A subsequent successful save reconciles storage.
type PersistenceError struct {
	Err error
}

// Error implements the error interface for PersistenceError.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist study state: %v", e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError reports whether err is (or wraps) a PersistenceError.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
