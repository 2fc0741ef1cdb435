package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentloop/service-booking/internal/domain"
	bookingDomain "github.com/rentloop/service-booking/internal/domain/booking"
	"gorm.io/gorm"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TransactionID uuid.UUID  `gorm:"type:uuid;index;not null"`
	RentalID      uuid.UUID  `gorm:"type:uuid;index;not null"`
	VendorID      uuid.UUID  `gorm:"type:uuid;index;not null"`
	PricingID     *uuid.UUID `gorm:"type:uuid"`
	Quantity      int        `gorm:"not null"`
	StartDate     time.Time  `gorm:"type:date;not null;index"`
	EndDate       time.Time  `gorm:"type:date;not null;index"`
	Status        string     `gorm:"not null;size:20;index"`
	Total         float64    `gorm:"not null"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := dbFromContext(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// Create persists a new booking.
func (r *GormBookingRepository) Create(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := dbFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// UpdateStatus applies a status transition to an existing booking.
func (r *GormBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status bookingDomain.BookingStatus) error {
	result := dbFromContext(ctx, r.db).
		Model(&BookingModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Booking", id.String())
	}
	return nil
}

// ListByQuery retrieves bookings matching the query with pagination. Date
// filters match bookings whose range overlaps the filter window.
func (r *GormBookingRepository) ListByQuery(ctx context.Context, query bookingDomain.BookingQuery) ([]*bookingDomain.Booking, int64, error) {
	db := dbFromContext(ctx, r.db).Model(&BookingModel{})

	if len(query.TransactionIDs) > 0 {
		db = db.Where("transaction_id IN ?", query.TransactionIDs)
	}
	if query.RentalID != nil {
		db = db.Where("rental_id = ?", *query.RentalID)
	}
	if query.VendorID != nil {
		db = db.Where("vendor_id = ?", *query.VendorID)
	}
	if query.Status != nil {
		db = db.Where("status = ?", string(*query.Status))
	}
	if query.StartDate != nil {
		db = db.Where("end_date >= ?", *query.StartDate)
	}
	if query.EndDate != nil {
		db = db.Where("start_date <= ?", *query.EndDate)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (query.Page - 1) * query.Limit
	if err := db.
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}

	return bookings, total, nil
}

// ListByTransactionID retrieves every booking of a parent transaction.
func (r *GormBookingRepository) ListByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := dbFromContext(ctx, r.db).
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings by transaction: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}

	return bookings, nil
}

// bookedQuantitiesSQL joins a generated calendar against bookings in statuses
// that consume inventory, producing one row per day with a zero default.
const bookedQuantitiesSQL = `
WITH dates AS (
	SELECT generate_series(?::date, ?::date, '1 day'::interval) AS date
),
relevant_bookings AS (
	SELECT start_date, end_date, quantity
	FROM bookings
	WHERE rental_id = ?
	  AND status IN ('requested', 'accepted', 'confirmed', 'completed', 'disputed')
	  AND id IS DISTINCT FROM ?
)
SELECT d.date AS date, COALESCE(SUM(rb.quantity), 0)::int AS quantity
FROM dates d
LEFT JOIN relevant_bookings rb
  ON d.date BETWEEN rb.start_date AND rb.end_date
GROUP BY d.date
ORDER BY d.date`

// ListBookedQuantities returns the summed booked quantity per calendar day
// over [startDate, endDate] inclusive.
func (r *GormBookingRepository) ListBookedQuantities(ctx context.Context, rentalID uuid.UUID, excludeBookingID *uuid.UUID, startDate, endDate time.Time) ([]bookingDomain.DayQuantity, error) {
	var exclude interface{}
	if excludeBookingID != nil {
		exclude = *excludeBookingID
	}

	type row struct {
		Date     time.Time
		Quantity int
	}
	var rows []row
	if err := dbFromContext(ctx, r.db).
		Raw(bookedQuantitiesSQL, startDate, endDate, rentalID, exclude).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list booked quantities: %w", err)
	}

	quantities := make([]bookingDomain.DayQuantity, len(rows))
	for i, rw := range rows {
		quantities[i] = bookingDomain.DayQuantity{
			Date:     bookingDomain.NormalizeDate(rw.Date),
			Quantity: rw.Quantity,
		}
	}
	return quantities, nil
}

// CountByStatus returns booking counts grouped by status.
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := dbFromContext(ctx, r.db).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
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

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.TransactionID,
		m.RentalID,
		m.VendorID,
		m.PricingID,
		m.Quantity,
		bookingDomain.NormalizeDate(m.StartDate),
		bookingDomain.NormalizeDate(m.EndDate),
		status,
		m.Total,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
