package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentloop/service-booking/internal/domain"
)

// HoldStatus represents the state of a checkout hold.
type HoldStatus string

const (
	HoldStatusPending HoldStatus = "pending"
	HoldStatusBlocked HoldStatus = "blocked"
)

// ParseHoldStatus converts a raw string into a HoldStatus.
func ParseHoldStatus(s string) (HoldStatus, error) {
	status := HoldStatus(s)
	switch status {
	case HoldStatusPending, HoldStatusBlocked:
		return status, nil
	}
	return "", domain.NewValidationError(fmt.Sprintf("invalid hold status: %s", s))
}

// BookingHold is a temporary reservation of quantity over a date range made
// during checkout. It is not a committed booking: pending holds do not block
// new booking requests, blocked holds do.
type BookingHold struct {
	HoldID        uuid.UUID
	TransactionID uuid.UUID
	RentalID      uuid.UUID
	Quantity      int
	StartDate     time.Time
	EndDate       time.Time
	Status        HoldStatus
}
