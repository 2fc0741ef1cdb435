package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VendorEmployeeModel is the GORM model for the vendor_employees table.
type VendorEmployeeModel struct {
	VendorID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// TableName returns the table name for the GORM model.
func (VendorEmployeeModel) TableName() string {
	return "vendor_employees"
}

// GormEmployeeRepository answers vendor membership queries from the
// vendor_employees table.
type GormEmployeeRepository struct {
	db *gorm.DB
}

// NewGormEmployeeRepository creates a new GormEmployeeRepository.
func NewGormEmployeeRepository(db *gorm.DB) *GormEmployeeRepository {
	return &GormEmployeeRepository{db: db}
}

// IsEmployee reports whether the user belongs to the vendor.
func (r *GormEmployeeRepository) IsEmployee(ctx context.Context, userID, vendorID uuid.UUID) (bool, error) {
	var count int64
	if err := dbFromContext(ctx, r.db).Model(&VendorEmployeeModel{}).
		Where("vendor_id = ? AND user_id = ?", vendorID, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check vendor membership: %w", err)
	}
	return count > 0, nil
}
