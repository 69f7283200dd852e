package ledger

import "github.com/pkg/errors"

var (
	// ErrNotFound is returned when a referenced website, validator or
	// intent does not exist, or the website is disabled.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when the requested change collides with the
	// current state, for example a second live settlement intent.
	ErrConflict = errors.New("conflict")
	// ErrInvalidTransition is returned when an intent is moved out of a
	// state that does not allow it.
	ErrInvalidTransition = errors.New("invalid intent transition")
	// ErrInsufficientPending means a confirmed intent would drive the
	// pending amount below zero.
	ErrInsufficientPending = errors.New("pending amount lower than intent amount")
)
