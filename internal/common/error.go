// Package common defines shared constants and sentinel errors used across
// the scanner client and the reference check-in server. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Local durable storage could not persist a write. A scan that fails with
	// this error was not queued and must be re-scanned.
	ErrStorage = errors.New("storage failure")

	// Service-level errors.
	ErrorValidation = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
