package booking

import (
	"fmt"

	"github.com/rentloop/service-booking/internal/domain"
)

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusRequested BookingStatus = "requested"
	StatusAccepted  BookingStatus = "accepted"
	StatusDeclined  BookingStatus = "declined"
	StatusCanceled  BookingStatus = "canceled"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusDisputed  BookingStatus = "disputed"
)

// validTransitions defines the state machine for booking status transitions.
// Every status appears as a key; terminal statuses map to an empty set so an
// unknown status is distinguishable from a terminal one.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusRequested: {StatusAccepted, StatusDeclined, StatusCanceled},
	StatusAccepted:  {StatusConfirmed, StatusCanceled},
	StatusConfirmed: {StatusCompleted, StatusCanceled},
	StatusDeclined:  {},
	StatusCanceled:  {},
	StatusCompleted: {},
	StatusDisputed:  {},
}

// ActiveStatuses lists the statuses that count against available inventory.
var ActiveStatuses = []BookingStatus{
	StatusRequested,
	StatusAccepted,
	StatusConfirmed,
	StatusCompleted,
	StatusDisputed,
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// ValidateTransition checks whether moving from current to next is allowed by
// the booking lifecycle. It returns a ValidationError for any pair outside
// the transition table, including transitions out of terminal statuses.
func ValidateTransition(current, next BookingStatus) error {
	if current.CanTransitionTo(next) {
		return nil
	}
	return domain.NewValidationError(
		fmt.Sprintf("invalid status transition from %s to %s", current, next),
	)
}
