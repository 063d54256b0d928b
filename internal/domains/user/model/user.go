package model

import (
	"time"

	"github.com/google/uuid"
)

// =====================================================
// ENTITY: User
// =====================================================
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose in JSON

	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	PhoneNumber *string    `json:"phone_number,omitempty"`
	Address     *string    `json:"address,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`

	// Membership
	IsLibrarian    bool      `json:"is_librarian"`
	IsActiveMember bool      `json:"is_active_member"`
	MembershipDate time.Time `json:"membership_date"` // set at creation, never updated

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName returns "First Last".
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Role returns the JWT role string for this user.
func (u *User) Role() string {
	if u.IsLibrarian {
		return "librarian"
	}
	return "member"
}

// CanBorrow checks borrowing eligibility.
// Business rule: active membership and fewer than maxActive borrowed loans.
func (u *User) CanBorrow(activeLoans, maxActive int) bool {
	return u.IsActiveMember && activeLoans < maxActive
}
