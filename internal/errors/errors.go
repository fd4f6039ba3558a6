// Package errors provides the sentinel errors shared by every layer of the service.
//
// Use cases wrap these sentinels with domain context (see internal/apikey/domain/errors.go)
// and HTTP handlers map them to status codes via internal/httputil. Anything that does not
// wrap one of them is treated as an internal error.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the stored state no longer matches the caller's expectation
	// (double revoke, concurrent rotation). Callers may retry after re-reading.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the request failed validation before any mutation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated actor lacks rights on the resource.
	ErrForbidden = errors.New("forbidden")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps err with message while preserving the chain for Is/As.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsDomainError reports whether err wraps one of the sentinel errors above.
// Errors for which this returns false are internal failures.
func IsDomainError(err error) bool {
	return Is(err, ErrNotFound) ||
		Is(err, ErrConflict) ||
		Is(err, ErrInvalidInput) ||
		Is(err, ErrUnauthorized) ||
		Is(err, ErrForbidden)
}
