// Package common defines shared constants and sentinel errors used across the
// store, service and transport layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrVersionConflict = errors.New("version conflict")

	// Service-level errors (generic/internal flow control).
	ErrorInternal  = errors.New("internal error")
	ErrUnavailable = errors.New("store unavailable")
	ErrValidation  = errors.New("validation error")

	// Auth errors.
	ErrorUnauthorized   = errors.New("unauthorized")
	ErrBadCredentials   = errors.New("invalid email or password")
	ErrInvalidToken     = errors.New("invalid token")
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
	ErrUnknownSubject   = errors.New("token subject does not exist")

	// Not-found errors for specific entities.
	ErrProductNotFound = errors.New("product not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrUserNotFound    = errors.New("user not found")

	// Conflict errors.
	ErrEmailTaken = errors.New("email already registered")
)
