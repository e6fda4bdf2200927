package store

import (
	"fmt"

	"cabanas/internal/models"
)

// ValidationError rejects a draft with a missing or malformed field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid booking: %s %s", e.Field, e.Reason)
}

// OverlapError rejects a write that would double-book a cabin. It carries the
// conflicting booking so callers can tell the user who holds the dates.
type OverlapError struct {
	Conflict models.Booking
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("cabin %s is occupied by %s from %s to %s",
		e.Conflict.Cabin, e.Conflict.GuestName, e.Conflict.CheckIn, e.Conflict.CheckOut)
}

// NotFoundError reports an operation against a nonexistent booking id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("booking %s not found", e.ID)
}
