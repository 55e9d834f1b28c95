// Package common defines shared sentinel errors for the user store.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Write-time constraint violations, mapped from engine error codes
	// at the repository boundary.
	ErrDuplicateKey         = errors.New("duplicate key")
	ErrMissingRequiredField = errors.New("missing required field")

	// Provisioning errors. An existing table whose shape diverges from the
	// declared schema is reported, never altered.
	ErrConstraintConflict = errors.New("constraint conflict")
)
