package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ========================================
// WRITE DTOs
// ========================================

// BorrowRequest checks a copy out.
// UserID is optional: librarians may borrow on behalf of a member,
// members always borrow for themselves. DueDate overrides the default
// loan period when supplied.
type BorrowRequest struct {
	BookID  uuid.UUID  `json:"book_id" binding:"required"`
	UserID  *uuid.UUID `json:"user_id,omitempty"`
	DueDate *time.Time `json:"due_date,omitempty"`
	Notes   string     `json:"notes,omitempty"`
}

func (r BorrowRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID, validation.Required.Error("book_id is required")),
		validation.Field(&r.DueDate, validation.When(r.DueDate != nil, validation.By(func(interface{}) error {
			if !r.DueDate.After(time.Now()) {
				return validation.NewError("validation_due_date", "due_date must be in the future")
			}
			return nil
		}))),
		validation.Field(&r.Notes, validation.Length(0, 1000)),
	)
}

// ReturnRequest checks a copy back in.
type ReturnRequest struct {
	Condition Condition `json:"condition"`
	Notes     string    `json:"notes,omitempty"`
}

// SetDefaults assumes a clean return unless stated otherwise.
func (r *ReturnRequest) SetDefaults() {
	if r.Condition == "" {
		r.Condition = ConditionGood
	}
}

func (r ReturnRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Condition, validation.By(func(interface{}) error {
			if !r.Condition.IsValid() {
				return validation.NewError("validation_condition", "condition must be good, damaged or lost")
			}
			return nil
		})),
		validation.Field(&r.Notes, validation.Length(0, 1000)),
	)
}

// ========================================
// READ DTOs
// ========================================

// ListLoansRequest filters loan listings.
type ListLoansRequest struct {
	Status    Status     `form:"status"`
	UserID    *uuid.UUID `form:"user_id"`
	BookID    *uuid.UUID `form:"book_id"`
	Overdue   bool       `form:"overdue"` // only loans past due right now
	Page      int        `form:"page"`
	Limit     int        `form:"limit"`
	SortBy    string     `form:"sort_by"`    // "loan_date", "due_date", "return_date"
	SortOrder string     `form:"sort_order"` // "asc", "desc"
}

// SetDefaults sets default values for pagination
func (r *ListLoansRequest) SetDefaults() {
	if r.Page == 0 {
		r.Page = 1
	}
	if r.Limit == 0 {
		r.Limit = 20
	}
	if r.SortBy == "" {
		r.SortBy = "loan_date"
	}
	if r.SortOrder == "" {
		r.SortOrder = "desc"
	}
}

func (r ListLoansRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status,
			validation.When(r.Status != "", validation.By(func(interface{}) error {
				if !r.Status.IsValid() {
					return validation.NewError("validation_status", "invalid loan status")
				}
				return nil
			})),
		),
		validation.Field(&r.Page, validation.Min(1)),
		validation.Field(&r.Limit, validation.Min(1), validation.Max(100)),
		validation.Field(&r.SortBy, validation.In("loan_date", "due_date", "return_date")),
		validation.Field(&r.SortOrder, validation.In("asc", "desc")),
	)
}

// LoanDTO is the public loan representation with derived fields.
type LoanDTO struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	BookID uuid.UUID `json:"book_id"`

	Status     Status     `json:"status"`
	LoanDate   time.Time  `json:"loan_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`

	RenewalCount int  `json:"renewal_count"`
	MaxRenewals  int  `json:"max_renewals"`
	CanRenew     bool `json:"can_renew"`

	IsOverdue   bool            `json:"is_overdue"`
	DaysOverdue int             `json:"days_overdue"`
	FineAmount  decimal.Decimal `json:"fine_amount"`
	FinePaid    bool            `json:"fine_paid"`

	Notes *string `json:"notes,omitempty"`

	IssuedBy   *uuid.UUID `json:"issued_by,omitempty"`
	ReturnedTo *uuid.UUID `json:"returned_to,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToDTOAt evaluates the derived fields against a fixed clock.
func (l *Loan) ToDTOAt(now time.Time) LoanDTO {
	return LoanDTO{
		ID:           l.ID,
		UserID:       l.UserID,
		BookID:       l.BookID,
		Status:       l.Status,
		LoanDate:     l.LoanDate,
		DueDate:      l.DueDate,
		ReturnDate:   l.ReturnDate,
		RenewalCount: l.RenewalCount,
		MaxRenewals:  l.MaxRenewals,
		CanRenew:     l.CanRenewAt(now),
		IsOverdue:    l.IsOverdueAt(now),
		DaysOverdue:  l.DaysOverdueAt(now),
		FineAmount:   l.FineAmount,
		FinePaid:     l.FinePaid,
		Notes:        l.Notes,
		IssuedBy:     l.IssuedBy,
		ReturnedTo:   l.ReturnedTo,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func (l *Loan) ToDTO() LoanDTO {
	return l.ToDTOAt(time.Now())
}

// PaginationMeta - pagination metadata
type PaginationMeta struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	TotalPages  int `json:"total_pages"`
}

// ListLoansResponse is a paginated loan page.
type ListLoansResponse struct {
	Loans      []LoanDTO      `json:"loans"`
	Pagination PaginationMeta `json:"pagination"`
}

// Statistics summarizes circulation for the librarian dashboard.
type Statistics struct {
	TotalLoans       int             `json:"total_loans"`
	ActiveLoans      int             `json:"active_loans"`
	OverdueLoans     int             `json:"overdue_loans"`
	ReturnedLoans    int             `json:"returned_loans"`
	LostBooks        int             `json:"lost_books"`
	DamagedBooks     int             `json:"damaged_books"`
	OutstandingFines decimal.Decimal `json:"outstanding_fines"`
	CollectedFines   decimal.Decimal `json:"collected_fines"`
}
