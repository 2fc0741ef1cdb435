package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rentloop/service-booking/internal/auth"
	"github.com/rentloop/service-booking/internal/domain"
)

// RBACAuthorizer authorizes sessions against the vendor employee directory.
type RBACAuthorizer struct {
	employees EmployeeDirectory
}

// NewRBACAuthorizer creates an RBACAuthorizer backed by the given directory.
func NewRBACAuthorizer(employees EmployeeDirectory) *RBACAuthorizer {
	return &RBACAuthorizer{employees: employees}
}

// AuthorizeEmployee verifies the session user is an employee of the vendor.
func (a *RBACAuthorizer) AuthorizeEmployee(ctx context.Context, session auth.Session, vendorID uuid.UUID) error {
	ok, err := a.employees.IsEmployee(ctx, session.UserID, vendorID)
	if err != nil {
		return fmt.Errorf("failed to check vendor membership: %w", err)
	}
	if !ok {
		return domain.NewForbiddenError("user is not an employee of this vendor")
	}
	return nil
}

// AuthorizeUser verifies the session belongs to the given user.
func (a *RBACAuthorizer) AuthorizeUser(_ context.Context, session auth.Session, userID uuid.UUID) error {
	if session.UserID != userID {
		return domain.NewForbiddenError("session does not belong to this user")
	}
	return nil
}
