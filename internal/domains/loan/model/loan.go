package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the loan lifecycle state
type Status string

const (
	StatusBorrowed Status = "borrowed"
	StatusReturned Status = "returned"
	StatusOverdue  Status = "overdue"
	StatusLost     Status = "lost"
	StatusDamaged  Status = "damaged"
)

var Statuses = []Status{
	StatusBorrowed, StatusReturned, StatusOverdue, StatusLost, StatusDamaged,
}

func (s Status) IsValid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsActive reports whether the loan still holds a copy.
// Overdue loans are active: the copy is out until it comes back.
func (s Status) IsActive() bool {
	return s == StatusBorrowed || s == StatusOverdue
}

// Condition describes the state of a returned copy.
type Condition string

const (
	ConditionGood    Condition = "good"
	ConditionDamaged Condition = "damaged"
	ConditionLost    Condition = "lost"
)

func (c Condition) IsValid() bool {
	switch c {
	case ConditionGood, ConditionDamaged, ConditionLost:
		return true
	}
	return false
}

// =====================================================
// ENTITY: Loan
// =====================================================

type Loan struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	BookID uuid.UUID `json:"book_id"`

	Status     Status     `json:"status"`
	LoanDate   time.Time  `json:"loan_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`

	RenewalCount int `json:"renewal_count"`
	MaxRenewals  int `json:"max_renewals"`

	FineAmount decimal.Decimal `json:"fine_amount"` // 0.00 until overdue
	FinePaid   bool            `json:"fine_paid"`

	Notes *string `json:"notes,omitempty"`

	// Librarian bookkeeping
	IssuedBy   *uuid.UUID `json:"issued_by,omitempty"`
	ReturnedTo *uuid.UUID `json:"returned_to,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOverdueAt reports whether the loan is past due at the given instant.
// A loan already promoted to overdue stays overdue regardless of the clock.
func (l *Loan) IsOverdueAt(now time.Time) bool {
	if l.Status == StatusOverdue {
		return true
	}
	return l.Status == StatusBorrowed && now.After(l.DueDate)
}

func (l *Loan) IsOverdue() bool {
	return l.IsOverdueAt(time.Now())
}

// DaysOverdueAt counts whole days past the due date, never negative.
func (l *Loan) DaysOverdueAt(now time.Time) int {
	if !l.IsOverdueAt(now) {
		return 0
	}
	days := int(now.Sub(l.DueDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func (l *Loan) DaysOverdue() int {
	return l.DaysOverdueAt(time.Now())
}

// CanRenewAt checks renewal eligibility: an active borrowed loan with
// renewals left that has not slipped past its due date.
func (l *Loan) CanRenewAt(now time.Time) bool {
	return l.Status == StatusBorrowed &&
		l.RenewalCount < l.MaxRenewals &&
		!l.IsOverdueAt(now)
}

func (l *Loan) CanRenew() bool {
	return l.CanRenewAt(time.Now())
}

// Renew extends the due date by periodDays from the CURRENT due date,
// not from the renewal instant. Callers must check CanRenewAt first.
func (l *Loan) Renew(periodDays int) {
	l.DueDate = l.DueDate.AddDate(0, 0, periodDays)
	l.RenewalCount++
}

// CalculateFineAt computes daysOverdue x dailyRate, rounded to 2dp.
func (l *Loan) CalculateFineAt(now time.Time, dailyRate decimal.Decimal) decimal.Decimal {
	days := l.DaysOverdueAt(now)
	if days == 0 {
		return decimal.Zero.Round(2)
	}
	return dailyRate.Mul(decimal.NewFromInt(int64(days))).Round(2)
}

func (l *Loan) CalculateFine(dailyRate decimal.Decimal) decimal.Decimal {
	return l.CalculateFineAt(time.Now(), dailyRate)
}
