package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentloop/service-booking/internal/domain"
)

// Booking is the aggregate root for the booking domain. A booking reserves a
// quantity of a rental's inventory over an inclusive calendar-day range. It
// is created once, mutated only through status transitions, and never
// deleted: terminal bookings remain as an audit trail.
type Booking struct {
	id            uuid.UUID
	transactionID uuid.UUID
	rentalID      uuid.UUID
	vendorID      uuid.UUID
	pricingID     *uuid.UUID
	quantity      int
	startDate     time.Time
	endDate       time.Time
	status        BookingStatus
	total         float64
	createdAt     time.Time
	updatedAt     time.Time
}

// NewBooking creates a new Booking aggregate with the given initial status.
// Dates are normalized to midnight UTC.
func NewBooking(
	transactionID uuid.UUID,
	rentalID uuid.UUID,
	vendorID uuid.UUID,
	pricingID *uuid.UUID,
	quantity int,
	startDate time.Time,
	endDate time.Time,
	status BookingStatus,
	total float64,
) (*Booking, error) {
	if transactionID == uuid.Nil {
		return nil, domain.NewValidationError("transaction ID is required")
	}
	if rentalID == uuid.Nil {
		return nil, domain.NewValidationError("rental ID is required")
	}
	if vendorID == uuid.Nil {
		return nil, domain.NewValidationError("vendor ID is required")
	}
	if quantity <= 0 {
		return nil, domain.NewValidationError("quantity must be positive")
	}

	start := NormalizeDate(startDate)
	end := NormalizeDate(endDate)
	if end.Before(start) {
		return nil, domain.NewValidationError("end date must not be before start date")
	}

	now := time.Now().UTC()
	return &Booking{
		id:            uuid.New(),
		transactionID: transactionID,
		rentalID:      rentalID,
		vendorID:      vendorID,
		pricingID:     pricingID,
		quantity:      quantity,
		startDate:     start,
		endDate:       end,
		status:        status,
		total:         total,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	transactionID uuid.UUID,
	rentalID uuid.UUID,
	vendorID uuid.UUID,
	pricingID *uuid.UUID,
	quantity int,
	startDate time.Time,
	endDate time.Time,
	status BookingStatus,
	total float64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		transactionID: transactionID,
		rentalID:      rentalID,
		vendorID:      vendorID,
		pricingID:     pricingID,
		quantity:      quantity,
		startDate:     startDate,
		endDate:       endDate,
		status:        status,
		total:         total,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// TransactionID returns the parent transaction's identifier.
func (b *Booking) TransactionID() uuid.UUID { return b.transactionID }

// RentalID returns the booked rental's identifier.
func (b *Booking) RentalID() uuid.UUID { return b.rentalID }

// VendorID returns the vendor owning the rental.
func (b *Booking) VendorID() uuid.UUID { return b.vendorID }

// PricingID returns the pricing used for this booking, or nil for external bookings.
func (b *Booking) PricingID() *uuid.UUID { return b.pricingID }

// Quantity returns the number of units reserved.
func (b *Booking) Quantity() int { return b.quantity }

// StartDate returns the first reserved calendar day (inclusive, UTC).
func (b *Booking) StartDate() time.Time { return b.startDate }

// EndDate returns the last reserved calendar day (inclusive, UTC).
func (b *Booking) EndDate() time.Time { return b.endDate }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// Total returns the booking's total price.
func (b *Booking) Total() float64 { return b.total }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }
