package dao

import "errors"

// Sentinel errors shared by every run store implementation so that callers
// can detect conditions via errors.Is instead of string comparison.
var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidID indicates an empty or otherwise invalid key
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilEntity is returned when the caller attempts to persist nil
	ErrNilEntity = errors.New("dao: nil entity")
)
