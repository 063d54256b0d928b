package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-backend/internal/config"
	"library-backend/internal/domains/loan/model"
	"library-backend/internal/domains/loan/repository"
	usermodel "library-backend/internal/domains/user/model"
	userrepo "library-backend/internal/domains/user/repository"
	"library-backend/internal/shared/utils"
	"library-backend/pkg/logger"
)

// borrowRetries bounds how often a borrow is retried after losing the
// book row lock to a concurrent borrower.
const (
	borrowRetries    = 3
	borrowRetryDelay = 25 * time.Millisecond
)

type loanService struct {
	loanRepo repository.LoanRepository
	userRepo userrepo.UserRepository
	cfg      config.LoanConfig
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	userRepo userrepo.UserRepository,
	cfg config.LoanConfig,
) ServiceInterface {
	return &loanService{
		loanRepo: loanRepo,
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// =====================================================
// BORROW
// =====================================================

func (s *loanService) BorrowBook(ctx context.Context, actor Actor, req model.BorrowRequest) (*model.LoanDTO, error) {
	// Step 1: Validate request
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Resolve the borrower. Members always borrow for
	// themselves; librarians may issue a loan to any member.
	borrowerID := actor.UserID
	var issuedBy *uuid.UUID
	if actor.IsLibrarian {
		issuedBy = &actor.UserID
		if req.UserID != nil {
			borrowerID = *req.UserID
		}
	} else if req.UserID != nil && *req.UserID != actor.UserID {
		return nil, usermodel.ErrUnauthorized
	}

	// Step 3: Membership must be active
	borrower, err := s.userRepo.GetByID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	if !borrower.IsActiveMember {
		return nil, model.ErrMemberNotEligible
	}

	// Step 4: Build the loan. A caller-supplied due date overrides the
	// default loan period.
	now := time.Now()
	dueDate := now.AddDate(0, 0, s.cfg.PeriodDays)
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}
	loan := &model.Loan{
		ID:           uuid.New(),
		UserID:       borrowerID,
		BookID:       req.BookID,
		Status:       model.StatusBorrowed,
		LoanDate:     now,
		DueDate:      dueDate,
		RenewalCount: 0,
		MaxRenewals:  s.cfg.MaxRenewals,
		FineAmount:   decimal.Zero,
		FinePaid:     false,
		Notes:        utils.StringPtr(req.Notes),
		IssuedBy:     issuedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Step 5: Run the transactional borrow, retrying brief lock losses
	for attempt := 1; ; attempt++ {
		err = s.loanRepo.Borrow(ctx, loan, s.cfg.MaxActiveLoans)
		if err == nil {
			break
		}
		if !errors.Is(err, model.ErrBorrowConflict) || attempt >= borrowRetries {
			return nil, err
		}

		logger.Debug(fmt.Sprintf("Borrow lock conflict on book %s, retrying (attempt %d)", req.BookID, attempt))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(borrowRetryDelay):
		}
	}

	dto := loan.ToDTOAt(now)
	return &dto, nil
}

// =====================================================
// RETURN
// =====================================================

func (s *loanService) ReturnLoan(ctx context.Context, actor Actor, loanID uuid.UUID, req model.ReturnRequest) (*model.LoanDTO, error) {
	req.SetDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Ownership check up front, outside the transaction
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !actor.IsLibrarian && loan.UserID != actor.UserID {
		return nil, usermodel.ErrUnauthorized
	}

	var returnedTo *uuid.UUID
	if actor.IsLibrarian {
		returnedTo = &actor.UserID
	}

	now := time.Now()
	closed, err := s.loanRepo.Return(ctx, loanID, req.Condition, returnedTo, utils.StringPtr(req.Notes), now, s.cfg.DailyFineRate)
	if err != nil {
		return nil, err
	}

	dto := closed.ToDTOAt(now)
	return &dto, nil
}

// =====================================================
// RENEW
// =====================================================

func (s *loanService) RenewLoan(ctx context.Context, actor Actor, loanID uuid.UUID) (*model.LoanDTO, error) {
	// Ownership check up front; eligibility is re-checked on the locked
	// row so two concurrent renewals cannot both consume the same slot.
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !actor.IsLibrarian && loan.UserID != actor.UserID {
		return nil, usermodel.ErrUnauthorized
	}

	now := time.Now()
	renewed, err := s.loanRepo.Renew(ctx, loanID, s.cfg.PeriodDays, now)
	if err != nil {
		return nil, err
	}

	dto := renewed.ToDTOAt(now)
	return &dto, nil
}

// =====================================================
// QUERIES
// =====================================================

func (s *loanService) GetLoan(ctx context.Context, actor Actor, loanID uuid.UUID) (*model.LoanDTO, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !actor.IsLibrarian && loan.UserID != actor.UserID {
		return nil, usermodel.ErrUnauthorized
	}

	dto := loan.ToDTO()
	return &dto, nil
}

func (s *loanService) ListLoans(ctx context.Context, req *model.ListLoansRequest) (*model.ListLoansResponse, error) {
	req.SetDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.listPage(ctx, req)
}

func (s *loanService) MyLoans(ctx context.Context, userID uuid.UUID, current bool, page, limit int) (*model.ListLoansResponse, error) {
	req := &model.ListLoansRequest{
		UserID: &userID,
		Page:   page,
		Limit:  limit,
	}
	req.SetDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if !current {
		return s.listPage(ctx, req)
	}

	// Active loans come in two states, so fetch both and merge.
	// Volumes are tiny (bounded by the active loan limit).
	req.Status = model.StatusBorrowed
	borrowed, _, err := s.loanRepo.List(ctx, req)
	if err != nil {
		return nil, err
	}
	req.Status = model.StatusOverdue
	overdue, _, err := s.loanRepo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	loans := append(borrowed, overdue...)
	now := time.Now()
	dtos := make([]model.LoanDTO, 0, len(loans))
	for _, l := range loans {
		dtos = append(dtos, l.ToDTOAt(now))
	}

	return &model.ListLoansResponse{
		Loans: dtos,
		Pagination: model.PaginationMeta{
			CurrentPage: 1,
			PerPage:     len(dtos),
			Total:       len(dtos),
			TotalPages:  1,
		},
	}, nil
}

func (s *loanService) listPage(ctx context.Context, req *model.ListLoansRequest) (*model.ListLoansResponse, error) {
	loans, total, err := s.loanRepo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	dtos := make([]model.LoanDTO, 0, len(loans))
	for _, l := range loans {
		dtos = append(dtos, l.ToDTOAt(now))
	}

	totalPages := (total + req.Limit - 1) / req.Limit

	return &model.ListLoansResponse{
		Loans: dtos,
		Pagination: model.PaginationMeta{
			CurrentPage: req.Page,
			PerPage:     req.Limit,
			Total:       total,
			TotalPages:  totalPages,
		},
	}, nil
}

// =====================================================
// FINES
// =====================================================

func (s *loanService) PayFine(ctx context.Context, loanID uuid.UUID) (*model.LoanDTO, error) {
	// The settle runs on a locked row so a fine can only be collected once.
	loan, err := s.loanRepo.PayFine(ctx, loanID)
	if err != nil {
		return nil, err
	}

	dto := loan.ToDTO()
	return &dto, nil
}

func (s *loanService) Statistics(ctx context.Context) (*model.Statistics, error) {
	return s.loanRepo.Statistics(ctx)
}

// =====================================================
// OVERDUE SWEEP
// =====================================================

func (s *loanService) PromoteOverdueLoans(ctx context.Context) (int, error) {
	count, err := s.loanRepo.PromoteOverdue(ctx, time.Now(), s.cfg.DailyFineRate)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		logger.Info("Promoted overdue loans", map[string]interface{}{
			"count": count,
		})
	}
	return count, nil
}
