package db

import "errors"

// Error classes returned by Store operations. Callers match them with
// errors.Is; the wrapped message carries the detail.
var (
	// ErrValidation means the request itself is unusable; nothing was written
	ErrValidation = errors.New("validation failed")
	// ErrNotFound means the referenced row does not exist
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the caller is neither the owner nor a superuser
	ErrForbidden = errors.New("not permitted")
	// ErrConflict means a uniqueness rule would be broken
	ErrConflict = errors.New("conflict")
	// ErrUnauthenticated means credentials did not identify an active user
	ErrUnauthenticated = errors.New("authentication failed")
)
