// Package apperrors defines the error taxonomy shared by services and
// handlers. Services wrap these sentinels with context via fmt.Errorf and %w;
// handlers classify with errors.Is and map to an HTTP status in one place.
package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrInvalidRequest marks malformed or missing input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnauthorized marks a missing or invalid credential, including guest
	// checkout attempts while guest checkout is disabled.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound marks an unknown order, product or user.
	ErrNotFound = errors.New("not found")
	// ErrVerificationFailed marks a payment signature mismatch.
	ErrVerificationFailed = errors.New("payment verification failed")
	// ErrServiceUnavailable marks a required external integration that is not
	// configured.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrConflict marks a uniqueness violation (email already registered,
	// duplicate subscription).
	ErrConflict = errors.New("conflict")
)

// StatusCode maps a classified error to its HTTP status. Unclassified errors
// are internal.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrVerificationFailed):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, ErrServiceUnavailable):
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}
