// Package common defines shared constants and sentinel errors used across
// authkeeper components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")

	// Validation errors (malformed input shape, checked before persistence).
	ErrValidation = errors.New("validation failed")

	// Auth errors (invalid, expired, or malformed access token).
	ErrInvalidToken = errors.New("invalid token")
)
