package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrCorruptRecord is returned when a stored blob does not decode into
	// its record type. Malformed records are rejected, never trusted.
	ErrCorruptRecord = errors.New("corrupt record")
)
