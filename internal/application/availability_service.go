package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentloop/service-booking/internal/domain"
	bookingDomain "github.com/rentloop/service-booking/internal/domain/booking"
	"go.uber.org/zap"
)

// AvailabilityQuery describes one per-rental availability computation.
type AvailabilityQuery struct {
	RentalID             uuid.UUID
	StartDate            time.Time
	EndDate              time.Time
	ExcludeBookingID     *uuid.UUID
	ExcludeTransactionID *uuid.UUID
	HoldStatus           *bookingDomain.HoldStatus
}

// AvailabilitiesQuery computes availability for several rentals over one window.
type AvailabilitiesQuery struct {
	RentalIDs            []uuid.UUID
	StartDate            time.Time
	EndDate              time.Time
	ExcludeTransactionID *uuid.UUID
	HoldStatus           *bookingDomain.HoldStatus
}

// AvailabilityService derives per-day remaining capacity for rentals. Nothing
// is read from a stored counter: every answer is a fresh summation over the
// bookings and holds that overlap the queried window.
type AvailabilityService struct {
	rentals  bookingDomain.RentalInventory
	bookings bookingDomain.BookingRepository
	holds    bookingDomain.HoldRepository
	logger   *zap.Logger
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(
	rentals bookingDomain.RentalInventory,
	bookings bookingDomain.BookingRepository,
	holds bookingDomain.HoldRepository,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		rentals:  rentals,
		bookings: bookings,
		holds:    holds,
		logger:   logger,
	}
}

// GetAvailability computes remaining capacity for every calendar day in the
// query window, one entry per day in ascending order, zero-activity days
// included. Negative values propagate: they mark overbooked days.
func (s *AvailabilityService) GetAvailability(ctx context.Context, query AvailabilityQuery) ([]bookingDomain.Availability, error) {
	start := bookingDomain.NormalizeDate(query.StartDate)
	end := bookingDomain.NormalizeDate(query.EndDate)
	if end.Before(start) {
		return nil, domain.NewValidationError("end date must not be before start date")
	}

	totalQuantity, err := s.rentals.GetTotalQuantity(ctx, query.RentalID)
	if err != nil {
		return nil, err
	}

	bookedQuantities, err := s.bookings.ListBookedQuantities(ctx, query.RentalID, query.ExcludeBookingID, start, end)
	if err != nil {
		return nil, err
	}

	holds, err := s.holds.ListOverlapping(ctx, bookingDomain.HoldQuery{
		RentalID:             query.RentalID,
		StartDate:            start,
		EndDate:              end,
		Status:               query.HoldStatus,
		ExcludeTransactionID: query.ExcludeTransactionID,
	})
	if err != nil {
		return nil, err
	}

	merged := bookingDomain.MergeBookedQuantitiesAndHolds(bookedQuantities, holds)
	return bookingDomain.CalculateAvailability(merged, totalQuantity, start, end), nil
}

// GetAvailabilities computes availability per rental, each independently via
// GetAvailability.
func (s *AvailabilityService) GetAvailabilities(ctx context.Context, query AvailabilitiesQuery) (map[uuid.UUID][]bookingDomain.Availability, error) {
	availabilities := make(map[uuid.UUID][]bookingDomain.Availability, len(query.RentalIDs))

	for _, rentalID := range query.RentalIDs {
		availability, err := s.GetAvailability(ctx, AvailabilityQuery{
			RentalID:             rentalID,
			StartDate:            query.StartDate,
			EndDate:              query.EndDate,
			ExcludeTransactionID: query.ExcludeTransactionID,
			HoldStatus:           query.HoldStatus,
		})
		if err != nil {
			return nil, err
		}
		availabilities[rentalID] = availability
	}

	return availabilities, nil
}

// CheckAvailability requires every day in the window to have at least the
// requested quantity available, returning the full availability on success.
func (s *AvailabilityService) CheckAvailability(ctx context.Context, quantity int, query AvailabilityQuery) ([]bookingDomain.Availability, error) {
	availability, err := s.GetAvailability(ctx, query)
	if err != nil {
		return nil, err
	}

	for _, day := range availability {
		if day.AvailableQuantity < quantity {
			s.logger.Debug("availability check failed",
				zap.String("rental_id", query.RentalID.String()),
				zap.Time("date", day.Date),
				zap.Int("available", day.AvailableQuantity),
				zap.Int("requested", quantity),
			)
			return nil, domain.NewValidationError("requested quantity exceeds available quantity")
		}
	}

	return availability, nil
}
