package moderation

import "errors"

var (
	// ErrAccessDenied is returned for unauthenticated submissions, blocked
	// authors and non-admin moderation attempts. It never mutates state.
	ErrAccessDenied = errors.New("access denied")
	// ErrEmptyComment is returned when a comment body is empty after
	// trimming.
	ErrEmptyComment = errors.New("comment cannot be empty")
	// ErrUnknownAction is returned when an admin action cannot be parsed.
	ErrUnknownAction = errors.New("unknown moderation action")
)
