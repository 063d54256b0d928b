package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/user/model"
)

// ServiceInterface exposes account and membership operations.
type ServiceInterface interface {
	// Auth
	Register(ctx context.Context, req model.RegisterRequest) (*model.UserDTO, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)
	RefreshToken(ctx context.Context, req model.RefreshTokenRequest) (*model.LoginResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req model.ChangePasswordRequest) error

	// Profile
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req model.UpdateProfileRequest) (*model.UserDTO, error)

	// Librarian
	ListUsers(ctx context.Context, req *model.ListUsersRequest) (*model.ListUsersResponse, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.UserDTO, error)
	UpdateMembershipStatus(ctx context.Context, id uuid.UUID, active bool) (*model.UserDTO, error)
	UpdateRole(ctx context.Context, id uuid.UUID, librarian bool) (*model.UserDTO, error)
}
