package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rentloop/service-booking/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RentalModel is the GORM model for the rentals table.
type RentalModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	VendorID uuid.UUID `gorm:"type:uuid;index;not null"`
	Quantity int       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RentalModel) TableName() string {
	return "rentals"
}

// GormRentalRepository is the GORM-based implementation of RentalInventory.
type GormRentalRepository struct {
	db *gorm.DB
}

// NewGormRentalRepository creates a new GormRentalRepository.
func NewGormRentalRepository(db *gorm.DB) *GormRentalRepository {
	return &GormRentalRepository{db: db}
}

// GetTotalQuantity returns the rental's total unit count.
func (r *GormRentalRepository) GetTotalQuantity(ctx context.Context, rentalID uuid.UUID) (int, error) {
	var model RentalModel
	if err := dbFromContext(ctx, r.db).Where("id = ?", rentalID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.NewNotFoundError("Rental", rentalID.String())
		}
		return 0, fmt.Errorf("failed to find rental: %w", err)
	}
	return model.Quantity, nil
}

// LockForUpdate takes a row-level lock on the rental for the duration of the
// surrounding transaction.
func (r *GormRentalRepository) LockForUpdate(ctx context.Context, rentalID uuid.UUID) error {
	var model RentalModel
	if err := dbFromContext(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", rentalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewNotFoundError("Rental", rentalID.String())
		}
		return fmt.Errorf("failed to lock rental: %w", err)
	}
	return nil
}
