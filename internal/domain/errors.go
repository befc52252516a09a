// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvariantViolation is returned when a fetched record contradicts the
	// invariants the core depends on (for example review counts that do not
	// sum). The core refuses to proceed on such records rather than repairing
	// them silently.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrTimestampOutOfOrder is returned when an operation is given a "now"
	// earlier than state already recorded, which would corrupt day-based
	// bookkeeping if applied.
	ErrTimestampOutOfOrder = errors.New("timestamp earlier than recorded state")
)
