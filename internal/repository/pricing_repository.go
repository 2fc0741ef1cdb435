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

// PricingModel is the GORM model for the pricings table.
type PricingModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	VendorID uuid.UUID `gorm:"type:uuid;index;not null"`
	RentalID uuid.UUID `gorm:"type:uuid;index;not null"`
	DayRate  float64   `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PricingModel) TableName() string {
	return "pricings"
}

// GormPricingService prices bookings from stored per-day rates.
type GormPricingService struct {
	db *gorm.DB
}

// NewGormPricingService creates a new GormPricingService.
func NewGormPricingService(db *gorm.DB) *GormPricingService {
	return &GormPricingService{db: db}
}

// CalculatePrice prices quantity units over [startDate, endDate] inclusive.
// The pricing must belong to the booking's vendor and rental.
func (s *GormPricingService) CalculatePrice(ctx context.Context, rentalID, vendorID, pricingID uuid.UUID, startDate, endDate time.Time, quantity int) (float64, error) {
	var model PricingModel
	if err := dbFromContext(ctx, s.db).Where("id = ?", pricingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.NewNotFoundError("Pricing", pricingID.String())
		}
		return 0, fmt.Errorf("failed to find pricing: %w", err)
	}

	if model.VendorID != vendorID || model.RentalID != rentalID {
		return 0, domain.NewValidationError("pricing does not belong to this rental")
	}

	start := bookingDomain.NormalizeDate(startDate)
	end := bookingDomain.NormalizeDate(endDate)
	days := int(end.Sub(start).Hours()/24) + 1

	return model.DayRate * float64(days) * float64(quantity), nil
}
