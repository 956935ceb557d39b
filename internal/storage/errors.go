package storage

import "errors"

// Errors shared by the event and snapshot archives.
var (
	// ErrNotFound is returned when no archived record matches.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when an event or snapshot ID is already
	// archived. Archives are append-only; the monitor ignores this error.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned for records missing their ID or mint.
	ErrInvalidInput = errors.New("invalid input")
)
