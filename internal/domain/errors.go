package domain

import "errors"

// Shared error kinds. Every rejected operation maps to exactly one of
// these so the calling surface can render a specific failure instead of
// a generic one.
var (
	ErrNotAuthorized     = errors.New("not authorized")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnavailable       = errors.New("service unavailable")
)
