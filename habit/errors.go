/*
errors.go - Error taxonomy shared by both backends

PURPOSE:
  One classification for every failure the data-access contract can
  report, regardless of which backend produced it. The store layer
  reports the most specific member it can determine; the facade passes
  the classification through unchanged. Nothing in this module retries.

TAXONOMY:
  ErrUnauthorized        missing/invalid session token
  ErrInvalidCredentials  sign-in rejection (specialises Unauthorized)
  ErrNotFound            operation target absent, including unknown routes
  ErrValidation          malformed or constraint-violating input
  ErrUserExists          duplicate username (specialises Validation)
  ErrServer              unexpected backend failure

  A failed analytics computation surfaces as ErrServer, never as an
  empty heatmap or zeroed streaks.

USAGE:
  if errors.Is(err, habit.ErrNotFound) { ... }

SEE ALSO:
  - api/handlers.go: maps taxonomy members to HTTP status codes
  - client/remote: maps HTTP status codes back to taxonomy members
*/
package habit

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnauthorized is returned when a session token is missing or invalid.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is returned for a failed sign-in.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)

	// ErrNotFound is returned when the target of an operation does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned for malformed or constraint-violating input.
	ErrValidation = errors.New("validation error")

	// ErrUserExists is returned when signing up an already-taken username.
	ErrUserExists = fmt.Errorf("%w: user exists", ErrValidation)

	// ErrServer is returned for unexpected backend failures.
	ErrServer = errors.New("server error")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports which field of a request failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError reports whether the error is due to invalid client input
// rather than a backend failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnauthorized)
}
