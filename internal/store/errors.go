package store

import "errors"

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidReply is returned when a reply references a missing comment
	// or a comment on a different page.
	ErrInvalidReply = errors.New("invalid reply reference")
	// ErrConstraintViolation is returned when a write would break a schema
	// invariant, e.g. a comment that is both approved and rejected.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrStoreUnavailable is returned when the database did not answer
	// within the configured timeout.
	ErrStoreUnavailable = errors.New("store unavailable")
)
