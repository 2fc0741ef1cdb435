package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingQuery filters booking listings. Date filters match bookings whose
// range overlaps the window.
type BookingQuery struct {
	TransactionIDs []uuid.UUID
	RentalID       *uuid.UUID
	VendorID       *uuid.UUID
	Status         *BookingStatus
	StartDate      *time.Time
	EndDate        *time.Time
	Page           int
	Limit          int
}

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// Create persists a new booking.
	Create(ctx context.Context, booking *Booking) error

	// UpdateStatus applies a status transition to an existing booking.
	UpdateStatus(ctx context.Context, id uuid.UUID, status BookingStatus) error

	// ListByQuery retrieves bookings matching the query with pagination.
	ListByQuery(ctx context.Context, query BookingQuery) ([]*Booking, int64, error)

	// ListByTransactionID retrieves every booking of a parent transaction.
	ListByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*Booking, error)

	// ListBookedQuantities returns the summed booked quantity per calendar
	// day over [startDate, endDate] inclusive for bookings in active
	// statuses, producing one entry per day even when nothing is booked.
	// excludeBookingID, when set, removes that booking from its own count.
	ListBookedQuantities(ctx context.Context, rentalID uuid.UUID, excludeBookingID *uuid.UUID, startDate, endDate time.Time) ([]DayQuantity, error)

	// CountByStatus returns booking counts grouped by status.
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// HoldQuery filters checkout holds overlapping a date range.
type HoldQuery struct {
	RentalID             uuid.UUID
	StartDate            time.Time
	EndDate              time.Time
	Status               *HoldStatus
	ExcludeTransactionID *uuid.UUID
}

// HoldRepository defines the read contract for checkout holds.
type HoldRepository interface {
	// ListOverlapping retrieves holds whose range overlaps the query window.
	ListOverlapping(ctx context.Context, query HoldQuery) ([]BookingHold, error)
}

// RentalInventory exposes the total inventory of a rental. The availability
// engine derives remaining capacity from this total on every query; no
// stored counter exists.
type RentalInventory interface {
	// GetTotalQuantity returns the rental's total unit count.
	GetTotalQuantity(ctx context.Context, rentalID uuid.UUID) (int, error)

	// LockForUpdate takes a row-level lock on the rental for the duration of
	// the surrounding transaction, serializing concurrent availability
	// rechecks against the same rental.
	LockForUpdate(ctx context.Context, rentalID uuid.UUID) error
}

// TransactionRepository defines the read contract for parent transactions.
type TransactionRepository interface {
	// FindByID retrieves a transaction by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
}

// PricingService computes the total price of a non-external booking.
type PricingService interface {
	// CalculatePrice prices quantity units over [startDate, endDate]
	// inclusive using the vendor's pricing.
	CalculatePrice(ctx context.Context, rentalID, vendorID, pricingID uuid.UUID, startDate, endDate time.Time, quantity int) (float64, error)
}
