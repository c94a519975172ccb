package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyExists is returned when initialising a project that already
	// has a ledger.
	ErrAlreadyExists = errors.New("project already exists")

	// ErrNotInitialized is returned when a project is used before it has been
	// initialised.
	ErrNotInitialized = errors.New("project not initialized")
)

// StateError reports a ledger lifecycle violation for a named project.
// Use errors.Is with ErrAlreadyExists or ErrNotInitialized to tell the kinds
// apart.
type StateError struct {
	Project string
	Err     error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %q", e.Err, e.Project)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// AlreadyExists returns the StateError for an existing project.
func AlreadyExists(project string) error {
	return &StateError{Project: project, Err: ErrAlreadyExists}
}

// NotInitialized returns the StateError for a missing project.
func NotInitialized(project string) error {
	return &StateError{Project: project, Err: ErrNotInitialized}
}

// IsStateError reports whether err is one of the lifecycle errors.
func IsStateError(err error) bool {
	return errors.Is(err, ErrAlreadyExists) || errors.Is(err, ErrNotInitialized)
}
