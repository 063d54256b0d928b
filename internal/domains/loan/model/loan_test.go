package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func activeLoan(due time.Time) *Loan {
	return &Loan{
		Status:      StatusBorrowed,
		LoanDate:    due.AddDate(0, 0, -14),
		DueDate:     due,
		MaxRenewals: 2,
	}
}

func TestIsOverdueAt(t *testing.T) {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("before due date", func(t *testing.T) {
		l := activeLoan(due)
		assert.False(t, l.IsOverdueAt(due.Add(-time.Hour)))
	})

	t.Run("past due date", func(t *testing.T) {
		l := activeLoan(due)
		assert.True(t, l.IsOverdueAt(due.Add(time.Hour)))
	})

	t.Run("promoted loan stays overdue", func(t *testing.T) {
		l := activeLoan(due)
		l.Status = StatusOverdue
		assert.True(t, l.IsOverdueAt(due.Add(-48*time.Hour)))
	})

	t.Run("returned loan is never overdue", func(t *testing.T) {
		l := activeLoan(due)
		l.Status = StatusReturned
		assert.False(t, l.IsOverdueAt(due.AddDate(0, 1, 0)))
	})
}

func TestDaysOverdueAt(t *testing.T) {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := activeLoan(due)

	assert.Equal(t, 0, l.DaysOverdueAt(due.Add(-time.Hour)))
	assert.Equal(t, 0, l.DaysOverdueAt(due.Add(6*time.Hour)), "same day counts as zero whole days")
	assert.Equal(t, 1, l.DaysOverdueAt(due.AddDate(0, 0, 1)))
	assert.Equal(t, 5, l.DaysOverdueAt(due.AddDate(0, 0, 5)))
}

func TestCalculateFineAt(t *testing.T) {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rate := decimal.RequireFromString("1.00")

	t.Run("five days at one per day", func(t *testing.T) {
		l := activeLoan(due)
		fine := l.CalculateFineAt(due.AddDate(0, 0, 5), rate)
		assert.Equal(t, "5.00", fine.StringFixed(2))
	})

	t.Run("not overdue means zero", func(t *testing.T) {
		l := activeLoan(due)
		fine := l.CalculateFineAt(due.Add(-time.Hour), rate)
		assert.Equal(t, "0.00", fine.StringFixed(2))
	})

	t.Run("fractional rate rounds to cents", func(t *testing.T) {
		l := activeLoan(due)
		fine := l.CalculateFineAt(due.AddDate(0, 0, 3), decimal.RequireFromString("0.333"))
		assert.Equal(t, "1.00", fine.StringFixed(2))
	})
}

func TestCanRenewAt(t *testing.T) {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := due.Add(-48 * time.Hour)

	t.Run("fresh loan", func(t *testing.T) {
		l := activeLoan(due)
		assert.True(t, l.CanRenewAt(now))
	})

	t.Run("renewal limit reached", func(t *testing.T) {
		l := activeLoan(due)
		l.RenewalCount = 2
		assert.False(t, l.CanRenewAt(now))
	})

	t.Run("overdue loan cannot renew", func(t *testing.T) {
		l := activeLoan(due)
		assert.False(t, l.CanRenewAt(due.Add(time.Hour)))
	})

	t.Run("returned loan cannot renew", func(t *testing.T) {
		l := activeLoan(due)
		l.Status = StatusReturned
		assert.False(t, l.CanRenewAt(now))
	})
}

func TestRenewExtendsFromDueDate(t *testing.T) {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := activeLoan(due)

	l.Renew(14)

	assert.Equal(t, due.AddDate(0, 0, 14), l.DueDate, "extension is anchored to the due date, not the renewal instant")
	assert.Equal(t, 1, l.RenewalCount)

	l.Renew(14)
	assert.Equal(t, due.AddDate(0, 0, 28), l.DueDate)
	assert.Equal(t, 2, l.RenewalCount)
	assert.False(t, l.CanRenewAt(due.Add(-time.Hour)))
}

func TestStatusIsActive(t *testing.T) {
	assert.True(t, StatusBorrowed.IsActive())
	assert.True(t, StatusOverdue.IsActive())
	assert.False(t, StatusReturned.IsActive())
	assert.False(t, StatusLost.IsActive())
	assert.False(t, StatusDamaged.IsActive())
}
