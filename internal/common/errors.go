package common

import "errors"

var (
	// Gateway outcomes.
	ErrRemoteUnavailable = errors.New("remote unavailable")
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")

	// ErrDuplicateSkipped is a recognised no-op: a machine-generated task with
	// the same content hash already exists.
	ErrDuplicateSkipped = errors.New("duplicate skipped")

	// Session lifecycle.
	ErrNotStarted = errors.New("session not started")

	// Tokens.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
