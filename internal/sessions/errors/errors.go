package errors

import "errors"

var (
	ErrNotFound = errors.New("session not found")

	ErrInvalidID = errors.New("invalid session ID format")

	ErrStatusConflict = errors.New("session status does not allow this transition")

	ErrLockExists = errors.New("booking lock already exists for slot")

	ErrMentorNotFound = errors.New("mentor not found")
)
