package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rentloop/service-booking/internal/domain"
	bookingDomain "github.com/rentloop/service-booking/internal/domain/booking"
	"gorm.io/gorm"
)

// TransactionModel is the GORM model for the transactions table.
type TransactionModel struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Type   string     `gorm:"not null;size:20"`
	UserID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for the GORM model.
func (TransactionModel) TableName() string {
	return "transactions"
}

// GormTransactionRepository is the GORM-based implementation of TransactionRepository.
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository.
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID retrieves a transaction by its unique identifier.
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Transaction, error) {
	var model TransactionModel
	if err := dbFromContext(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Transaction", id.String())
		}
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return &bookingDomain.Transaction{
		TransactionID: model.ID,
		Type:          bookingDomain.TransactionType(model.Type),
		UserID:        model.UserID,
	}, nil
}
