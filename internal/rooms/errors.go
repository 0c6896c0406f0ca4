package rooms

import "errors"

var (
	// ErrNotFound is returned when no room matches the given code or id.
	ErrNotFound = errors.New("rooms: room not found")
	// ErrInvalidInput is returned for empty or malformed ids and codes.
	ErrInvalidInput = errors.New("rooms: invalid input")
	// ErrCodeSpaceExhausted is returned when no unused code could be
	// generated within the attempt limit.
	ErrCodeSpaceExhausted = errors.New("rooms: code space exhausted")
)
