package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentloop/service-booking/internal/auth"
	"github.com/rentloop/service-booking/internal/clock"
	"github.com/rentloop/service-booking/internal/domain"
	bookingDomain "github.com/rentloop/service-booking/internal/domain/booking"
	"go.uber.org/zap"
)

// RequestBookingInput holds the data needed to create a new booking.
type RequestBookingInput struct {
	TransactionID   uuid.UUID                     `json:"transaction_id" binding:"required"`
	TransactionType bookingDomain.TransactionType `json:"transaction_type" binding:"required"`
	RentalID        uuid.UUID                     `json:"rental_id" binding:"required"`
	VendorID        uuid.UUID                     `json:"vendor_id" binding:"required"`
	PricingID       *uuid.UUID                    `json:"pricing_id"`
	Total           *float64                      `json:"total"`
	Quantity        int                           `json:"quantity" binding:"required"`
	StartDate       time.Time                     `json:"start_date" binding:"required"`
	EndDate         time.Time                     `json:"end_date" binding:"required"`
}

// ListBookingsInput filters booking listings.
type ListBookingsInput struct {
	TransactionIDs    []uuid.UUID
	RentalID          *uuid.UUID
	VendorID          *uuid.UUID
	Status            *bookingDomain.BookingStatus
	StartDate         *time.Time
	EndDate           *time.Time
	CheckAvailability bool
	Page              int
	Limit             int
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID            uuid.UUID  `json:"id"`
	TransactionID uuid.UUID  `json:"transaction_id"`
	RentalID      uuid.UUID  `json:"rental_id"`
	VendorID      uuid.UUID  `json:"vendor_id"`
	PricingID     *uuid.UUID `json:"pricing_id,omitempty"`
	Quantity      int        `json:"quantity"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       time.Time  `json:"end_date"`
	Status        string     `json:"status"`
	Total         float64    `json:"total"`
	Available     *bool      `json:"available,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BookingStatsDTO holds booking counts grouped by status.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// BookingService orchestrates booking lifecycle operations. Every lifecycle
// operation runs inside one unit-of-work scope covering the read, the
// authorization, the transition validation, the availability recheck, the
// status write and the settlement delegation; a failure at any step leaves
// booking status and inventory untouched.
type BookingService struct {
	uow          UnitOfWork
	bookings     bookingDomain.BookingRepository
	rentals      bookingDomain.RentalInventory
	transactions bookingDomain.TransactionRepository
	availability *AvailabilityService
	pricing      bookingDomain.PricingService
	authorizer   Authorizer
	settlement   SettlementDelegate
	clock        clock.Clock
	logger       *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	uow UnitOfWork,
	bookings bookingDomain.BookingRepository,
	rentals bookingDomain.RentalInventory,
	transactions bookingDomain.TransactionRepository,
	availability *AvailabilityService,
	pricing bookingDomain.PricingService,
	authorizer Authorizer,
	settlement SettlementDelegate,
	clk clock.Clock,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		uow:          uow,
		bookings:     bookings,
		rentals:      rentals,
		transactions: transactions,
		availability: availability,
		pricing:      pricing,
		authorizer:   authorizer,
		settlement:   settlement,
		clock:        clk,
		logger:       logger,
	}
}

// RequestBooking validates the request, rechecks availability and creates the
// booking. External transactions carry their own total and start Confirmed;
// all other types are priced through the pricing service and start Requested.
func (s *BookingService) RequestBooking(ctx context.Context, input RequestBookingInput) (*BookingDTO, error) {
	if input.TransactionType == bookingDomain.TransactionTypeExternal {
		if input.PricingID != nil {
			return nil, domain.NewValidationError("external bookings cannot have a pricing id")
		}
		if input.Total == nil {
			return nil, domain.NewValidationError("external bookings must have a total")
		}
	} else {
		if input.PricingID == nil {
			return nil, domain.NewValidationError("non-external bookings must have a pricing id")
		}
		if input.Total != nil {
			return nil, domain.NewValidationError("non-external bookings cannot have a total")
		}
	}

	var dto *BookingDTO
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		if err := s.rentals.LockForUpdate(ctx, input.RentalID); err != nil {
			return err
		}

		// Pending holds do not block new requests, only blocked ones do.
		blocked := bookingDomain.HoldStatusBlocked
		if _, err := s.availability.CheckAvailability(ctx, input.Quantity, AvailabilityQuery{
			RentalID:             input.RentalID,
			StartDate:            input.StartDate,
			EndDate:              input.EndDate,
			ExcludeTransactionID: &input.TransactionID,
			HoldStatus:           &blocked,
		}); err != nil {
			return err
		}

		var (
			total  float64
			status bookingDomain.BookingStatus
		)
		if input.TransactionType == bookingDomain.TransactionTypeExternal {
			total = *input.Total
			status = bookingDomain.StatusConfirmed
		} else {
			priced, err := s.pricing.CalculatePrice(ctx, input.RentalID, input.VendorID, *input.PricingID, input.StartDate, input.EndDate, input.Quantity)
			if err != nil {
				return err
			}
			total = priced
			status = bookingDomain.StatusRequested
		}

		bk, err := bookingDomain.NewBooking(
			input.TransactionID,
			input.RentalID,
			input.VendorID,
			input.PricingID,
			input.Quantity,
			input.StartDate,
			input.EndDate,
			status,
			total,
		)
		if err != nil {
			return err
		}

		if err := s.bookings.Create(ctx, bk); err != nil {
			return err
		}

		s.logger.Info("booking requested",
			zap.String("booking_id", bk.ID().String()),
			zap.String("rental_id", bk.RentalID().String()),
			zap.String("status", bk.Status().String()),
		)

		result := toBookingDTO(bk)
		dto = &result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Accept transitions a requested booking to accepted. The caller must be an
// employee of the booking's vendor. Availability is rechecked with the
// booking excluded from its own count so it cannot count against itself.
func (s *BookingService) Accept(ctx context.Context, session auth.Session, bookingID uuid.UUID) (*BookingDTO, error) {
	var dto *BookingDTO
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		bk, err := s.bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := s.authorizer.AuthorizeEmployee(ctx, session, bk.VendorID()); err != nil {
			return err
		}
		if err := bookingDomain.ValidateTransition(bk.Status(), bookingDomain.StatusAccepted); err != nil {
			return err
		}

		// Serialize concurrent rechecks on this rental before the final
		// availability read.
		if err := s.rentals.LockForUpdate(ctx, bk.RentalID()); err != nil {
			return err
		}

		excludeID := bk.ID()
		blocked := bookingDomain.HoldStatusBlocked
		if _, err := s.availability.CheckAvailability(ctx, bk.Quantity(), AvailabilityQuery{
			RentalID:         bk.RentalID(),
			StartDate:        bk.StartDate(),
			EndDate:          bk.EndDate(),
			ExcludeBookingID: &excludeID,
			HoldStatus:       &blocked,
		}); err != nil {
			return err
		}

		if err := s.bookings.UpdateStatus(ctx, bk.ID(), bookingDomain.StatusAccepted); err != nil {
			return err
		}

		transaction, err := s.transactions.FindByID(ctx, bk.TransactionID())
		if err != nil {
			return err
		}
		if err := s.settlement.OnAcceptOrDecline(ctx, transaction); err != nil {
			return err
		}

		return s.reload(ctx, bk.ID(), &dto)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("booking accepted", zap.String("booking_id", bookingID.String()))
	return dto, nil
}

// Decline transitions a requested booking to declined. Declining only frees
// capacity, so no availability recheck is needed.
func (s *BookingService) Decline(ctx context.Context, session auth.Session, bookingID uuid.UUID) (*BookingDTO, error) {
	var dto *BookingDTO
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		bk, err := s.bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := s.authorizer.AuthorizeEmployee(ctx, session, bk.VendorID()); err != nil {
			return err
		}
		if err := bookingDomain.ValidateTransition(bk.Status(), bookingDomain.StatusDeclined); err != nil {
			return err
		}

		if err := s.bookings.UpdateStatus(ctx, bk.ID(), bookingDomain.StatusDeclined); err != nil {
			return err
		}

		transaction, err := s.transactions.FindByID(ctx, bk.TransactionID())
		if err != nil {
			return err
		}
		if err := s.settlement.OnAcceptOrDecline(ctx, transaction); err != nil {
			return err
		}

		return s.reload(ctx, bk.ID(), &dto)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("booking declined", zap.String("booking_id", bookingID.String()))
	return dto, nil
}

// Cancel transitions a booking to canceled. Authorization tries the vendor
// employee path first, then falls back to the transaction's requesting user;
// only when both fail is the cancellation forbidden. Bookings of external
// transactions skip settlement entirely.
func (s *BookingService) Cancel(ctx context.Context, session auth.Session, bookingID uuid.UUID) (*BookingDTO, error) {
	var dto *BookingDTO
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		bk, err := s.bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}

		var transaction *bookingDomain.Transaction
		if err := s.authorizer.AuthorizeEmployee(ctx, session, bk.VendorID()); err != nil {
			transaction, err = s.transactions.FindByID(ctx, bk.TransactionID())
			if err != nil {
				return err
			}
			if transaction.UserID == nil {
				return domain.NewForbiddenError("not authorized to cancel this booking")
			}
			if err := s.authorizer.AuthorizeUser(ctx, session, *transaction.UserID); err != nil {
				return domain.NewForbiddenError("not authorized to cancel this booking")
			}
		}

		if err := bookingDomain.ValidateTransition(bk.Status(), bookingDomain.StatusCanceled); err != nil {
			return err
		}
		previousStatus := bk.Status()

		if err := s.bookings.UpdateStatus(ctx, bk.ID(), bookingDomain.StatusCanceled); err != nil {
			return err
		}

		if transaction == nil {
			transaction, err = s.transactions.FindByID(ctx, bk.TransactionID())
			if err != nil {
				return err
			}
		}

		// External bookings need no refund or notification.
		if transaction.Type == bookingDomain.TransactionTypeExternal {
			return s.reload(ctx, bk.ID(), &dto)
		}

		if err := s.settlement.OnCancel(ctx, transaction, bk, previousStatus); err != nil {
			return err
		}

		return s.reload(ctx, bk.ID(), &dto)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("booking canceled", zap.String("booking_id", bookingID.String()))
	return dto, nil
}

// Complete transitions a confirmed booking to completed. Completion before
// the rental period has ended is invalid regardless of the transition table.
// Bookings of external transactions skip payout settlement.
func (s *BookingService) Complete(ctx context.Context, session auth.Session, bookingID uuid.UUID) (*BookingDTO, error) {
	var dto *BookingDTO
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		bk, err := s.bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := s.authorizer.AuthorizeEmployee(ctx, session, bk.VendorID()); err != nil {
			return err
		}
		if err := bookingDomain.ValidateTransition(bk.Status(), bookingDomain.StatusCompleted); err != nil {
			return err
		}
		if !bk.EndDate().Before(s.clock.Now()) {
			return domain.NewValidationError("booking cannot be completed before its end date")
		}

		if err := s.bookings.UpdateStatus(ctx, bk.ID(), bookingDomain.StatusCompleted); err != nil {
			return err
		}

		transaction, err := s.transactions.FindByID(ctx, bk.TransactionID())
		if err != nil {
			return err
		}

		// External bookings need no payout.
		if transaction.Type == bookingDomain.TransactionTypeExternal {
			return s.reload(ctx, bk.ID(), &dto)
		}

		if err := s.settlement.OnComplete(ctx, transaction.TransactionID, bk.VendorID()); err != nil {
			return err
		}

		return s.reload(ctx, bk.ID(), &dto)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("booking completed", zap.String("booking_id", bookingID.String()))
	return dto, nil
}

// ConfirmBooking applies the accepted→confirmed transition to one booking.
// It joins the caller's unit-of-work scope when one is open.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	var dto *BookingDTO
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		bk, err := s.bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := bookingDomain.ValidateTransition(bk.Status(), bookingDomain.StatusConfirmed); err != nil {
			return err
		}
		if err := s.bookings.UpdateStatus(ctx, bk.ID(), bookingDomain.StatusConfirmed); err != nil {
			return err
		}
		return s.reload(ctx, bk.ID(), &dto)
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// ConfirmBookings confirms several bookings sequentially inside one scope.
func (s *BookingService) ConfirmBookings(ctx context.Context, bookingIDs []uuid.UUID) ([]BookingDTO, error) {
	confirmed := make([]BookingDTO, 0, len(bookingIDs))
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		for _, id := range bookingIDs {
			dto, err := s.ConfirmBooking(ctx, id)
			if err != nil {
				return err
			}
			confirmed = append(confirmed, *dto)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// ConfirmAcceptedBookings confirms every accepted booking of a transaction.
// Called when the transaction's accept/decline aggregation resolves.
func (s *BookingService) ConfirmAcceptedBookings(ctx context.Context, transactionID uuid.UUID) ([]BookingDTO, error) {
	var confirmed []BookingDTO
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		bookings, err := s.bookings.ListByTransactionID(ctx, transactionID)
		if err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0, len(bookings))
		for _, bk := range bookings {
			if bk.Status() == bookingDomain.StatusAccepted {
				ids = append(ids, bk.ID())
			}
		}

		confirmed, err = s.ConfirmBookings(ctx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// GetBooking retrieves a booking. The caller must be a vendor employee or the
// transaction's requesting user.
func (s *BookingService) GetBooking(ctx context.Context, session auth.Session, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizer.AuthorizeEmployee(ctx, session, bk.VendorID()); err != nil {
		transaction, err := s.transactions.FindByID(ctx, bk.TransactionID())
		if err != nil {
			return nil, err
		}
		if transaction.UserID == nil {
			return nil, domain.NewForbiddenError("not authorized to view this booking")
		}
		if err := s.authorizer.AuthorizeUser(ctx, session, *transaction.UserID); err != nil {
			return nil, domain.NewForbiddenError("not authorized to view this booking")
		}
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// ListBookings retrieves a page of bookings matching the filters. When
// CheckAvailability is set, each booking is annotated with whether its own
// quantity would still fit if it were re-requested today.
func (s *BookingService) ListBookings(ctx context.Context, input ListBookingsInput) (*domain.PaginatedResult[BookingDTO], error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = 20
	}

	bookings, total, err := s.bookings.ListByQuery(ctx, bookingDomain.BookingQuery{
		TransactionIDs: input.TransactionIDs,
		RentalID:       input.RentalID,
		VendorID:       input.VendorID,
		Status:         input.Status,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Page:           page,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)

		if input.CheckAvailability {
			excludeID := bk.ID()
			blocked := bookingDomain.HoldStatusBlocked
			_, err := s.availability.CheckAvailability(ctx, bk.Quantity(), AvailabilityQuery{
				RentalID:         bk.RentalID(),
				StartDate:        bk.StartDate(),
				EndDate:          bk.EndDate(),
				ExcludeBookingID: &excludeID,
				HoldStatus:       &blocked,
			})
			available := err == nil
			dtos[i].Available = &available
		}
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetBookingStats returns aggregate booking counts grouped by status.
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// reload fetches the booking's fresh state and stores its DTO in out.
func (s *BookingService) reload(ctx context.Context, bookingID uuid.UUID, out **BookingDTO) error {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	result := toBookingDTO(bk)
	*out = &result
	return nil
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:            bk.ID(),
		TransactionID: bk.TransactionID(),
		RentalID:      bk.RentalID(),
		VendorID:      bk.VendorID(),
		PricingID:     bk.PricingID(),
		Quantity:      bk.Quantity(),
		StartDate:     bk.StartDate(),
		EndDate:       bk.EndDate(),
		Status:        string(bk.Status()),
		Total:         bk.Total(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}
}
