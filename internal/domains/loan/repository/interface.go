package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-backend/internal/domains/loan/model"
)

// LoanRepository persists loans and runs the transactional borrow and
// return flows that move copy counters together with loan rows.
type LoanRepository interface {
	// Borrow inserts a loan inside one transaction that locks the book
	// row with FOR UPDATE NOWAIT, re-checks availability, the per-book
	// duplicate rule and the active loan limit, then decrements the
	// counter. A lock miss surfaces as ErrBorrowConflict so the caller
	// can retry.
	Borrow(ctx context.Context, loan *model.Loan, maxActive int) error

	// Return closes a loan inside one transaction. Only a good-condition
	// return puts the copy back on the shelf; damaged and lost returns
	// keep it off circulation.
	Return(ctx context.Context, loanID uuid.UUID, condition model.Condition, returnedTo *uuid.UUID, notes *string, now time.Time, dailyRate decimal.Decimal) (*model.Loan, error)

	// Renew extends the due date on a locked loan row. Eligibility is
	// checked under the lock so concurrent renewals serialize and each
	// consumed renewal slot is counted.
	Renew(ctx context.Context, loanID uuid.UUID, periodDays int, now time.Time) (*model.Loan, error)

	// PayFine marks the fine collected on a locked loan row. A second
	// concurrent settle gets ErrNoFineDue.
	PayFine(ctx context.Context, loanID uuid.UUID) (*model.Loan, error)

	GetByID(ctx context.Context, id uuid.UUID) (*model.Loan, error)
	List(ctx context.Context, req *model.ListLoansRequest) ([]*model.Loan, int, error)
	CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// PromoteOverdue flips every borrowed loan past its due date to
	// overdue and recomputes its fine. Returns the number of promoted
	// loans. Idempotent: already-overdue loans only get their fine
	// refreshed.
	PromoteOverdue(ctx context.Context, now time.Time, dailyRate decimal.Decimal) (int, error)

	Statistics(ctx context.Context) (*model.Statistics, error)
}
