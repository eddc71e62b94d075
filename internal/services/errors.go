package services

import "errors"

// Sentinel errors returned by the service layer. Handlers map these to
// HTTP status codes in one place; services wrap them with context via
// fmt.Errorf and %w.
var (
	// ErrInvalidArgument marks malformed or out-of-range input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnauthorized marks a failed login or an invalid credential.
	// The message is deliberately generic so callers cannot tell which
	// part of a login failed.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound marks an operation on a record that does not exist.
	// Records owned by another user are reported as not found as well,
	// so existence never leaks across accounts.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a duplicate unique key, currently only the
	// registration email.
	ErrConflict = errors.New("already exists")
)
