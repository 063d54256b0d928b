package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"library-backend/internal/config"
	"library-backend/internal/domains/user/model"
	"library-backend/internal/domains/user/repository"
	"library-backend/internal/shared/utils"
	"library-backend/pkg/jwt"
)

// bcrypt cost 12: balance between security and login latency.
const bcryptCost = 12

type userService struct {
	userRepo   repository.UserRepository
	jwtManager *jwt.Manager
	loanCfg    config.LoanConfig
}

func NewUserService(
	userRepo repository.UserRepository,
	jwtManager *jwt.Manager,
	loanCfg config.LoanConfig,
) ServiceInterface {
	return &userService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		loanCfg:    loanCfg,
	}
}

// ========================================
// AUTHENTICATION
// ========================================

func (s *userService) Register(ctx context.Context, req model.RegisterRequest) (*model.UserDTO, error) {
	// Step 1: Validate request
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Hash password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Step 3: Build entity. New accounts are active members, never librarians.
	now := time.Now()
	u := &model.User{
		ID:             uuid.New(),
		Email:          req.Email,
		Username:       req.Username,
		PasswordHash:   string(passwordHash),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		PhoneNumber:    utils.StringPtr(req.PhoneNumber),
		Address:        utils.StringPtr(req.Address),
		DateOfBirth:    req.DateOfBirth,
		IsLibrarian:    false,
		IsActiveMember: true,
		MembershipDate: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// Step 4: Persist. Uniqueness conflicts surface as domain errors.
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	dto := u.ToDTO()
	dto.CanBorrowBooks = u.CanBorrow(0, s.loanCfg.MaxActiveLoans)
	return &dto, nil
}

func (s *userService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			// Same error as a bad password, do not leak account existence
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if !u.IsActiveMember {
		return nil, model.ErrInactiveMember
	}

	return s.issueTokens(ctx, u)
}

func (s *userService) RefreshToken(ctx context.Context, req model.RefreshTokenRequest) (*model.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	claims, err := s.jwtManager.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, model.ErrInvalidToken
	}

	userID := utils.ParseStringToUUID(claims.UserID)
	if userID == uuid.Nil {
		return nil, model.ErrInvalidToken
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsActiveMember {
		return nil, model.ErrInactiveMember
	}

	return s.issueTokens(ctx, u)
}

func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, req model.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return model.ErrInvalidCredentials
	}
	if req.CurrentPassword == req.NewPassword {
		return model.ErrSamePassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.PasswordHash = string(hash)

	return s.userRepo.Update(ctx, u)
}

func (s *userService) issueTokens(ctx context.Context, u *model.User) (*model.LoginResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(u.ID.String(), u.Email, u.Role())
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(u.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	dto, err := s.withBorrowSnapshot(ctx, u)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(s.jwtManager.AccessTokenTTL()),
		User:         *dto,
	}, nil
}

// ========================================
// PROFILE
// ========================================

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.UserDTO, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withBorrowSnapshot(ctx, u)
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req model.UpdateProfileRequest) (*model.UserDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Partial update: only non-nil fields are applied
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		u.PhoneNumber = req.PhoneNumber
	}
	if req.Address != nil {
		u.Address = req.Address
	}
	if req.DateOfBirth != nil {
		u.DateOfBirth = req.DateOfBirth
	}

	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	return s.withBorrowSnapshot(ctx, u)
}

// ========================================
// LIBRARIAN OPERATIONS
// ========================================

func (s *userService) ListUsers(ctx context.Context, req *model.ListUsersRequest) (*model.ListUsersResponse, error) {
	req.SetDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	users, total, err := s.userRepo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	dtos := make([]model.UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, u.ToDTO())
	}

	totalPages := (total + req.Limit - 1) / req.Limit

	return &model.ListUsersResponse{
		Users: dtos,
		Pagination: model.PaginationMeta{
			CurrentPage: req.Page,
			PerPage:     req.Limit,
			Total:       total,
			TotalPages:  totalPages,
		},
	}, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.UserDTO, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withBorrowSnapshot(ctx, u)
}

func (s *userService) UpdateMembershipStatus(ctx context.Context, id uuid.UUID, active bool) (*model.UserDTO, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	u.IsActiveMember = active
	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	return s.withBorrowSnapshot(ctx, u)
}

func (s *userService) UpdateRole(ctx context.Context, id uuid.UUID, librarian bool) (*model.UserDTO, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	u.IsLibrarian = librarian
	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	return s.withBorrowSnapshot(ctx, u)
}

// withBorrowSnapshot annotates the DTO with the current loan counters.
func (s *userService) withBorrowSnapshot(ctx context.Context, u *model.User) (*model.UserDTO, error) {
	active, err := s.userRepo.CountActiveLoans(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count active loans: %w", err)
	}

	dto := u.ToDTO()
	dto.ActiveLoansCount = active
	dto.CanBorrowBooks = u.CanBorrow(active, s.loanCfg.MaxActiveLoans)
	return &dto, nil
}
