package repository

import "errors"

var (
	// ErrNotFound is returned when the referenced document does not exist.
	// Callers surface it as a null/not-found result, not a system error.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict is returned when an optimistic-concurrency write
	// observed a stale version. Callers re-read and retry.
	ErrVersionConflict = errors.New("version conflict")

	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("already exists")
)
