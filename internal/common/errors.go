// Package common defines shared constants and sentinel errors used across
// the WriterLab server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Startup errors. A process that sees this one must not serve requests.
	ErrConfiguration = errors.New("configuration error")

	// Session token errors (malformed, tampered, unknown secret or expired).
	ErrDecode = errors.New("session decode error")

	// Credential store errors.
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrLoginRateLimited  = errors.New("too many login attempts")
	ErrorIncorrectFields = errors.New("incorrect fields")
)
