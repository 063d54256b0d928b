package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/user/model"
)

// UserRepository persists library member accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	List(ctx context.Context, req *model.ListUsersRequest) ([]*model.User, int, error)

	// CountActiveLoans counts loans in the borrowed state for a user.
	// Lives here so profile responses can report borrowing eligibility
	// without a round trip through the loan domain.
	CountActiveLoans(ctx context.Context, userID uuid.UUID) (int, error)
}
