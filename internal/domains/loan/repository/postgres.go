package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	bookmodel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/loan/model"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================

type postgresLoanRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresLoanRepository(pool *pgxpool.Pool) LoanRepository {
	return &postgresLoanRepository{pool: pool}
}

const loanColumns = `
	id, user_id, book_id,
	status, loan_date, due_date, return_date,
	renewal_count, max_renewals,
	fine_amount, fine_paid, notes,
	issued_by, returned_to,
	created_at, updated_at
`

func scanLoan(row pgx.Row) (*model.Loan, error) {
	l := &model.Loan{}
	err := row.Scan(
		&l.ID,
		&l.UserID,
		&l.BookID,
		&l.Status,
		&l.LoanDate,
		&l.DueDate,
		&l.ReturnDate,
		&l.RenewalCount,
		&l.MaxRenewals,
		&l.FineAmount,
		&l.FinePaid,
		&l.Notes,
		&l.IssuedBy,
		&l.ReturnedTo,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// isLockNotAvailable detects a failed FOR UPDATE NOWAIT acquisition.
func isLockNotAvailable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "55P03"
}

// =====================================================
// BORROW (transactional)
// =====================================================

func (r *postgresLoanRepository) Borrow(ctx context.Context, loan *model.Loan, maxActive int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // Auto-rollback if not committed

	// Step 1: Lock the book row. NOWAIT turns a concurrent borrow of the
	// same title into an immediate, retryable conflict instead of a
	// queued wait, so the last copy can never be handed out twice.
	lockQuery := `
		SELECT id, total_copies, available_copies, status, times_borrowed
		FROM books
		WHERE id = $1
		FOR UPDATE NOWAIT
	`

	book := &bookmodel.Book{}
	err = tx.QueryRow(ctx, lockQuery, loan.BookID).Scan(
		&book.ID,
		&book.TotalCopies,
		&book.AvailableCopies,
		&book.Status,
		&book.TimesBorrowed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return bookmodel.ErrBookNotFound
		}
		if isLockNotAvailable(err) {
			return model.ErrBorrowConflict
		}
		return fmt.Errorf("failed to lock book: %w", err)
	}

	// Step 2: Availability check on the locked row
	if err := book.ApplyBorrowDelta(); err != nil {
		return model.ErrBookUnavailable
	}

	// Step 3: One active loan per user and title
	var hasActive bool
	dupQuery := `
		SELECT EXISTS (
			SELECT 1 FROM loans
			WHERE user_id = $1 AND book_id = $2 AND status IN ('borrowed', 'overdue')
		)
	`
	if err := tx.QueryRow(ctx, dupQuery, loan.UserID, loan.BookID).Scan(&hasActive); err != nil {
		return fmt.Errorf("failed to check active loan: %w", err)
	}
	if hasActive {
		return model.ErrDuplicateActiveLoan
	}

	// Step 4: Active loan limit, re-checked under the lock
	var activeCount int
	countQuery := `SELECT COUNT(*) FROM loans WHERE user_id = $1 AND status = 'borrowed'`
	if err := tx.QueryRow(ctx, countQuery, loan.UserID).Scan(&activeCount); err != nil {
		return fmt.Errorf("failed to count active loans: %w", err)
	}
	if activeCount >= maxActive {
		return model.ErrBorrowLimitExceeded
	}

	// Step 5: Insert the loan
	insertQuery := `
		INSERT INTO loans (
			id, user_id, book_id,
			status, loan_date, due_date, return_date,
			renewal_count, max_renewals,
			fine_amount, fine_paid, notes,
			issued_by, returned_to,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
	`
	_, err = tx.Exec(ctx, insertQuery,
		loan.ID,
		loan.UserID,
		loan.BookID,
		loan.Status,
		loan.LoanDate,
		loan.DueDate,
		loan.ReturnDate,
		loan.RenewalCount,
		loan.MaxRenewals,
		loan.FineAmount,
		loan.FinePaid,
		loan.Notes,
		loan.IssuedBy,
		loan.ReturnedTo,
		loan.CreatedAt,
		loan.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrDuplicateActiveLoan
		}
		return fmt.Errorf("failed to insert loan: %w", err)
	}

	// Step 6: Persist the decremented counter and the bumped borrow
	// count on the same locked row
	updateQuery := `
		UPDATE books
		SET available_copies = $2, status = $3, times_borrowed = $4, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, updateQuery, book.ID, book.AvailableCopies, book.Status, book.TimesBorrowed); err != nil {
		return fmt.Errorf("failed to update book counters: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit borrow: %w", err)
	}
	return nil
}

// =====================================================
// RETURN (transactional)
// =====================================================

func (r *postgresLoanRepository) Return(
	ctx context.Context,
	loanID uuid.UUID,
	condition model.Condition,
	returnedTo *uuid.UUID,
	notes *string,
	now time.Time,
	dailyRate decimal.Decimal,
) (*model.Loan, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Step 1: Lock the loan row
	loan, err := scanLoan(tx.QueryRow(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrLoanNotFound
		}
		return nil, fmt.Errorf("failed to lock loan: %w", err)
	}

	if !loan.Status.IsActive() {
		return nil, model.ErrInvalidState
	}

	// Step 2: Settle the fine before the state flip
	if fine := loan.CalculateFineAt(now, dailyRate); fine.GreaterThan(decimal.Zero) {
		loan.FineAmount = fine
	}

	// Step 3: Close the loan according to the copy condition
	switch condition {
	case model.ConditionGood:
		loan.Status = model.StatusReturned
	case model.ConditionDamaged:
		loan.Status = model.StatusDamaged
	case model.ConditionLost:
		loan.Status = model.StatusLost
	default:
		return nil, model.ErrInvalidState
	}
	loan.ReturnDate = &now
	loan.ReturnedTo = returnedTo
	if notes != nil {
		loan.Notes = notes
	}

	// Step 4: Only a good-condition return restores a copy. Returns can
	// queue behind borrows, so a plain FOR UPDATE is enough here.
	if loan.Status == model.StatusReturned {
		book := &bookmodel.Book{}
		err = tx.QueryRow(ctx,
			`SELECT id, total_copies, available_copies, status FROM books WHERE id = $1 FOR UPDATE`,
			loan.BookID,
		).Scan(&book.ID, &book.TotalCopies, &book.AvailableCopies, &book.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to lock book: %w", err)
		}

		if err := book.ApplyReturnDelta(); err != nil {
			return nil, fmt.Errorf("counter violation on return: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE books SET available_copies = $2, status = $3, updated_at = NOW() WHERE id = $1`,
			book.ID, book.AvailableCopies, book.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update book counters: %w", err)
		}
	}

	// Step 5: Persist the closed loan
	_, err = tx.Exec(ctx, `
		UPDATE loans SET
			status = $2,
			return_date = $3,
			fine_amount = $4,
			notes = $5,
			returned_to = $6,
			updated_at = NOW()
		WHERE id = $1
	`,
		loan.ID,
		loan.Status,
		loan.ReturnDate,
		loan.FineAmount,
		loan.Notes,
		loan.ReturnedTo,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update loan: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit return: %w", err)
	}
	return loan, nil
}

// =====================================================
// RENEW / PAY FINE (transactional)
// =====================================================

// Renew locks the loan row, re-checks eligibility and extends the due
// date. The lock keeps two concurrent renewals from reading the same
// renewal_count and losing one increment.
func (r *postgresLoanRepository) Renew(ctx context.Context, loanID uuid.UUID, periodDays int, now time.Time) (*model.Loan, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	loan, err := scanLoan(tx.QueryRow(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrLoanNotFound
		}
		return nil, fmt.Errorf("failed to lock loan: %w", err)
	}

	if !loan.CanRenewAt(now) {
		return nil, model.ErrNotRenewable
	}
	loan.Renew(periodDays)

	_, err = tx.Exec(ctx,
		`UPDATE loans SET due_date = $2, renewal_count = $3, updated_at = NOW() WHERE id = $1`,
		loan.ID, loan.DueDate, loan.RenewalCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update loan: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit renew: %w", err)
	}
	return loan, nil
}

// PayFine locks the loan row and marks the fine collected. The second
// of two concurrent settles sees fine_paid already set and fails.
func (r *postgresLoanRepository) PayFine(ctx context.Context, loanID uuid.UUID) (*model.Loan, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	loan, err := scanLoan(tx.QueryRow(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrLoanNotFound
		}
		return nil, fmt.Errorf("failed to lock loan: %w", err)
	}

	if loan.FinePaid || !loan.FineAmount.GreaterThan(decimal.Zero) {
		return nil, model.ErrNoFineDue
	}
	loan.FinePaid = true

	_, err = tx.Exec(ctx,
		`UPDATE loans SET fine_paid = TRUE, updated_at = NOW() WHERE id = $1`, loan.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update loan: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit fine payment: %w", err)
	}
	return loan, nil
}

// =====================================================
// GET
// =====================================================

func (r *postgresLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	loan, err := scanLoan(r.pool.QueryRow(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrLoanNotFound
		}
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return loan, nil
}

// =====================================================
// LIST
// =====================================================

func (r *postgresLoanRepository) List(ctx context.Context, req *model.ListLoansRequest) ([]*model.Loan, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if req.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, req.Status)
		argIdx++
	}
	if req.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, *req.UserID)
		argIdx++
	}
	if req.BookID != nil {
		conditions = append(conditions, fmt.Sprintf("book_id = $%d", argIdx))
		args = append(args, *req.BookID)
		argIdx++
	}
	if req.Overdue {
		conditions = append(conditions,
			"(status = 'overdue' OR (status = 'borrowed' AND due_date < NOW()))")
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM loans WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count loans: %w", err)
	}

	// Sort column is whitelisted by DTO validation
	orderBy := fmt.Sprintf("%s %s", req.SortBy, strings.ToUpper(req.SortOrder))

	query := fmt.Sprintf(
		`SELECT %s FROM loans WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		loanColumns, where, orderBy, argIdx, argIdx+1,
	)
	args = append(args, req.Limit, (req.Page-1)*req.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	loans := []*model.Loan{}
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed reading loan rows: %w", err)
	}

	return loans, total, nil
}

func (r *postgresLoanRepository) CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM loans WHERE user_id = $1 AND status = 'borrowed'`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active loans: %w", err)
	}
	return count, nil
}

// =====================================================
// OVERDUE PROMOTION (batch)
// =====================================================

func (r *postgresLoanRepository) PromoteOverdue(ctx context.Context, now time.Time, dailyRate decimal.Decimal) (int, error) {
	// Fine = whole days past due x daily rate, computed in SQL so the
	// sweep stays a single statement. Refreshes already-overdue fines
	// too, which keeps the hourly run idempotent.
	query := `
		UPDATE loans SET
			status = 'overdue',
			fine_amount = ROUND(
				GREATEST(0, FLOOR(EXTRACT(EPOCH FROM ($1::timestamptz - due_date)) / 86400))::numeric * $2::numeric,
				2
			),
			updated_at = NOW()
		WHERE due_date < $1
		  AND status IN ('borrowed', 'overdue')
		  AND fine_paid = FALSE
	`

	tag, err := r.pool.Exec(ctx, query, now, dailyRate)
	if err != nil {
		return 0, fmt.Errorf("failed to promote overdue loans: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// =====================================================
// STATISTICS
// =====================================================

func (r *postgresLoanRepository) Statistics(ctx context.Context) (*model.Statistics, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'borrowed'),
			COUNT(*) FILTER (WHERE status = 'overdue' OR (status = 'borrowed' AND due_date < NOW())),
			COUNT(*) FILTER (WHERE status = 'returned'),
			COUNT(*) FILTER (WHERE status = 'lost'),
			COUNT(*) FILTER (WHERE status = 'damaged'),
			COALESCE(SUM(fine_amount) FILTER (WHERE fine_paid = FALSE), 0),
			COALESCE(SUM(fine_amount) FILTER (WHERE fine_paid = TRUE), 0)
		FROM loans
	`

	stats := &model.Statistics{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalLoans,
		&stats.ActiveLoans,
		&stats.OverdueLoans,
		&stats.ReturnedLoans,
		&stats.LostBooks,
		&stats.DamagedBooks,
		&stats.OutstandingFines,
		&stats.CollectedFines,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load loan statistics: %w", err)
	}
	return stats, nil
}
