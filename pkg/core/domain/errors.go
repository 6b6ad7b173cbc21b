package domain

import "errors"

// Typed failure conditions shared by every core operation. Callers match
// with errors.Is; the HTTP layer maps each to a status code.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("authentication failed")
	ErrNotFound   = errors.New("not found")
	ErrInternal   = errors.New("internal error")
)
