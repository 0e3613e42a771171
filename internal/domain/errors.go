package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Account lifecycle failures. Each one wraps a category above, so
// errors.Is matches either the specific kind or its category.
var (
	ErrDuplicateAccount   = fmt.Errorf("user already exists: %w", ErrConflict)
	ErrUnknownAccount     = fmt.Errorf("user not found: %w", ErrNotFound)
	ErrNoPendingRequest   = fmt.Errorf("no OTP request found for this email: %w", ErrBadRequest)
	ErrInvalidOTP         = fmt.Errorf("invalid OTP: %w", ErrBadRequest)
	ErrOTPExpired         = fmt.Errorf("OTP expired: %w", ErrBadRequest)
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("invalid or expired token: %w", ErrForbidden)
)

// ErrPersistence marks backend failures. The message is never shown to clients.
var ErrPersistence = errors.New("persistence failure")
