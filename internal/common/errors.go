// Package common defines shared constants and sentinel errors used across
// the PenguinMail backend. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrAccountNotFound marks a missing or foreign account referenced from
	// another operation, e.g. composing an email. It still matches
	// ErrorNotFound but lets the API report the account specifically.
	ErrAccountNotFound = fmt.Errorf("account: %w", ErrorNotFound)

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
	ErrTokenExpired   = errors.New("token expired")

	// Login failure. Deliberately generic: unknown email and wrong password
	// must be indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
