package seating

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrHoldNotFound is returned by Commit when the hold no longer exists,
	// either because it expired or because it was already released or
	// committed. Whoever observes the hold first consumes it.
	ErrHoldNotFound = errors.New("hold not found")

	// ErrUnknownSeat marks a request naming a seat the seat map does not
	// recognize.
	ErrUnknownSeat = errors.New("unknown seat")

	ErrEventExists   = errors.New("event already exists")
	ErrEventNotFound = errors.New("event not found")

	// ErrInvariantViolation marks a state the serialization design should
	// make impossible, e.g. a hold referencing a seat that is not HELD.
	// It is never repaired silently.
	ErrInvariantViolation = errors.New("seat state invariant violated")
)

// ConflictError reports every requested seat that was not AVAILABLE at
// evaluation time. The request mutates nothing.
type ConflictError struct {
	BlockedSeats []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("seats not available: %s", strings.Join(e.BlockedSeats, ", "))
}
