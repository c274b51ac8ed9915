package common

import (
	"errors"
	"fmt"
)

// Domain error taxonomy for the booking ledger. All of these surface to
// the caller as plain error values; handlers translate them into the
// JSON error envelope.
var (
	// ErrBookingConflict rejects a booking whose date range overlaps an
	// Active booking on the same car. Recoverable by picking different
	// dates or a different car.
	ErrBookingConflict = errors.New("booking dates conflict with an existing active booking")

	// ErrNotFound covers missing bookings, cars and customers.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidState rejects an operation requested from a status that
	// does not permit it, e.g. returning an already-returned booking.
	ErrInvalidState = errors.New("operation not permitted in current status")

	// ErrValidation rejects malformed or out-of-range input before any
	// repository call. Handlers map it to a 400 with the offending detail.
	ErrValidation = errors.New("invalid input")
)

// NotFoundf wraps ErrNotFound with the missing resource's name.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// InvalidStatef wraps ErrInvalidState with transition detail.
func InvalidStatef(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidState)...)
}

// Validationf wraps ErrValidation with the rejected field or value.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}
