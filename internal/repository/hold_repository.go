package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	bookingDomain "github.com/rentloop/service-booking/internal/domain/booking"
	"gorm.io/gorm"
)

// HoldModel is the GORM model for the booking_holds table.
type HoldModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	TransactionID uuid.UUID `gorm:"type:uuid;index;not null"`
	RentalID      uuid.UUID `gorm:"type:uuid;index;not null"`
	Quantity      int       `gorm:"not null"`
	StartDate     time.Time `gorm:"type:date;not null"`
	EndDate       time.Time `gorm:"type:date;not null"`
	Status        string    `gorm:"not null;size:20;index"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (HoldModel) TableName() string {
	return "booking_holds"
}

// GormHoldRepository is the GORM-based implementation of HoldRepository.
type GormHoldRepository struct {
	db *gorm.DB
}

// NewGormHoldRepository creates a new GormHoldRepository.
func NewGormHoldRepository(db *gorm.DB) *GormHoldRepository {
	return &GormHoldRepository{db: db}
}

// ListOverlapping retrieves holds whose range overlaps the query window.
func (r *GormHoldRepository) ListOverlapping(ctx context.Context, query bookingDomain.HoldQuery) ([]bookingDomain.BookingHold, error) {
	db := dbFromContext(ctx, r.db).
		Where("rental_id = ?", query.RentalID).
		Where("start_date <= ?", query.EndDate).
		Where("end_date >= ?", query.StartDate)

	if query.Status != nil {
		db = db.Where("status = ?", string(*query.Status))
	}
	if query.ExcludeTransactionID != nil {
		db = db.Where("transaction_id <> ?", *query.ExcludeTransactionID)
	}

	var models []HoldModel
	if err := db.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list overlapping holds: %w", err)
	}

	holds := make([]bookingDomain.BookingHold, len(models))
	for i, m := range models {
		holds[i] = bookingDomain.BookingHold{
			HoldID:        m.ID,
			TransactionID: m.TransactionID,
			RentalID:      m.RentalID,
			Quantity:      m.Quantity,
			StartDate:     bookingDomain.NormalizeDate(m.StartDate),
			EndDate:       bookingDomain.NormalizeDate(m.EndDate),
			Status:        bookingDomain.HoldStatus(m.Status),
		}
	}
	return holds, nil
}
