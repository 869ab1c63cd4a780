package domain

import "errors"

// Error kinds surfaced to clients. Handlers match with errors.Is and
// forward the wrapped human-readable message as an "error" event.
var (
	ErrValidation       = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrDuplicateRequest = errors.New("duplicate request")
	ErrRoomClosed       = errors.New("room closed")
)
