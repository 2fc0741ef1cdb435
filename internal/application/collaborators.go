package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentloop/service-booking/internal/auth"
	bookingDomain "github.com/rentloop/service-booking/internal/domain/booking"
)

// UnitOfWork runs a function inside one atomic persistence scope. Every
// lifecycle operation executes its reads, rechecks, writes and settlement
// delegation within a single scope: any error rolls the whole scope back.
// Nested calls join the surrounding scope.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Authorizer decides whether a session may act as a vendor employee or as a
// specific platform user.
type Authorizer interface {
	AuthorizeEmployee(ctx context.Context, session auth.Session, vendorID uuid.UUID) error
	AuthorizeUser(ctx context.Context, session auth.Session, userID uuid.UUID) error
}

// SettlementDelegate receives lifecycle outcomes that need settlement-side
// handling (transaction accept/decline aggregation, refunds, payouts).
// Bookings of external transactions never reach it.
type SettlementDelegate interface {
	OnAcceptOrDecline(ctx context.Context, transaction *bookingDomain.Transaction) error
	OnCancel(ctx context.Context, transaction *bookingDomain.Transaction, bk *bookingDomain.Booking, previousStatus bookingDomain.BookingStatus) error
	OnComplete(ctx context.Context, transactionID, vendorID uuid.UUID) error
}

// EmployeeDirectory answers vendor membership queries.
type EmployeeDirectory interface {
	IsEmployee(ctx context.Context, userID, vendorID uuid.UUID) (bool, error)
}
