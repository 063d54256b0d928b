package model

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// ========================================
// AUTH DTOs
// ========================================

// RegisterRequest creates a new member account.
type RegisterRequest struct {
	Email       string     `json:"email" binding:"required"`
	Username    string     `json:"username" binding:"required"`
	Password    string     `json:"password" binding:"required"`
	FirstName   string     `json:"first_name" binding:"required"`
	LastName    string     `json:"last_name" binding:"required"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	Address     string     `json:"address,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("invalid email format"),
			validation.Length(5, 255),
		),
		validation.Field(&r.Username,
			validation.Required.Error("username is required"),
			validation.Length(3, 150),
			validation.Match(regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)).Error("username may only contain letters, digits, _, . and -"),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be 8-128 characters"),
			validation.Match(regexp.MustCompile(`[A-Z]`)).Error("password must contain at least one uppercase letter"),
			validation.Match(regexp.MustCompile(`[a-z]`)).Error("password must contain at least one lowercase letter"),
			validation.Match(regexp.MustCompile(`[0-9]`)).Error("password must contain at least one number"),
		),
		validation.Field(&r.FirstName,
			validation.Required.Error("first name is required"),
			validation.Length(1, 100),
		),
		validation.Field(&r.LastName,
			validation.Required.Error("last name is required"),
			validation.Length(1, 100),
		),
		validation.Field(&r.PhoneNumber,
			validation.When(r.PhoneNumber != "",
				is.E164.Error("phone must be in E.164 format (e.g., +14155550123)"),
			),
		),
	)
}

// LoginRequest authenticates by email.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginResponse carries the JWT pair.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         UserDTO   `json:"user"`
}

// RefreshTokenRequest exchanges a refresh token for a new pair.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (r RefreshTokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// ChangePasswordRequest - user changes own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword,
			validation.Required,
			validation.Length(8, 128),
			validation.Match(regexp.MustCompile(`[A-Z]`)).Error("must contain uppercase"),
			validation.Match(regexp.MustCompile(`[a-z]`)).Error("must contain lowercase"),
			validation.Match(regexp.MustCompile(`[0-9]`)).Error("must contain number"),
		),
	)
}

// ========================================
// PROFILE DTOs
// ========================================

// UserDTO is the public user representation, safe to expose.
type UserDTO struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Username       string     `json:"username"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	FullName       string     `json:"full_name"`
	PhoneNumber    *string    `json:"phone_number,omitempty"`
	Address        *string    `json:"address,omitempty"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	IsLibrarian    bool       `json:"is_librarian"`
	IsActiveMember bool       `json:"is_active_member"`
	MembershipDate time.Time  `json:"membership_date"`
	CreatedAt      time.Time  `json:"created_at"`

	// Borrowing snapshot, populated by the service.
	ActiveLoansCount int  `json:"active_loans_count"`
	CanBorrowBooks   bool `json:"can_borrow_books"`
}

// ToDTO converts the entity; loan counters are filled in by the service.
func (u *User) ToDTO() UserDTO {
	return UserDTO{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		FullName:       u.FullName(),
		PhoneNumber:    u.PhoneNumber,
		Address:        u.Address,
		DateOfBirth:    u.DateOfBirth,
		IsLibrarian:    u.IsLibrarian,
		IsActiveMember: u.IsActiveMember,
		MembershipDate: u.MembershipDate,
		CreatedAt:      u.CreatedAt,
	}
}

// UpdateProfileRequest - user updates own profile. Nil fields stay untouched.
type UpdateProfileRequest struct {
	FirstName   *string    `json:"first_name,omitempty"`
	LastName    *string    `json:"last_name,omitempty"`
	PhoneNumber *string    `json:"phone_number,omitempty"`
	Address     *string    `json:"address,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName,
			validation.When(r.FirstName != nil, validation.Length(1, 100)),
		),
		validation.Field(&r.LastName,
			validation.When(r.LastName != nil, validation.Length(1, 100)),
		),
		validation.Field(&r.PhoneNumber,
			validation.When(r.PhoneNumber != nil && *r.PhoneNumber != "",
				is.E164.Error("phone must be in E.164 format"),
			),
		),
	)
}

// ========================================
// LIBRARIAN DTOs
// ========================================

// ListUsersRequest filters the member directory (librarian only).
type ListUsersRequest struct {
	IsLibrarian    *bool  `form:"is_librarian"`
	IsActiveMember *bool  `form:"is_active_member"`
	Search         string `form:"search"` // email, username or name
	Page           int    `form:"page"`
	Limit          int    `form:"limit"`
	SortBy         string `form:"sort_by"`    // "created_at", "membership_date", "email", "username"
	SortOrder      string `form:"sort_order"` // "asc", "desc"
}

// SetDefaults sets default values for pagination
func (r *ListUsersRequest) SetDefaults() {
	if r.Page == 0 {
		r.Page = 1
	}
	if r.Limit == 0 {
		r.Limit = 20
	}
	if r.SortBy == "" {
		r.SortBy = "created_at"
	}
	if r.SortOrder == "" {
		r.SortOrder = "desc"
	}
}

func (r ListUsersRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Page, validation.Min(1)),
		validation.Field(&r.Limit, validation.Min(1), validation.Max(100)),
		validation.Field(&r.SortBy,
			validation.In("created_at", "membership_date", "email", "username"),
		),
		validation.Field(&r.SortOrder,
			validation.In("asc", "desc"),
		),
	)
}

// ListUsersResponse is a paginated user list.
type ListUsersResponse struct {
	Users      []UserDTO      `json:"users"`
	Pagination PaginationMeta `json:"pagination"`
}

// PaginationMeta - pagination metadata
type PaginationMeta struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	TotalPages  int `json:"total_pages"`
}

// UpdateStatusRequest - librarian activates/deactivates a membership.
type UpdateStatusRequest struct {
	IsActiveMember bool `json:"is_active_member"`
}

// UpdateRoleRequest - librarian grants or revokes librarian rights.
type UpdateRoleRequest struct {
	IsLibrarian bool `json:"is_librarian"`
}
