package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/loan/model"
)

// Actor identifies the authenticated caller for authorization checks.
type Actor struct {
	UserID      uuid.UUID
	IsLibrarian bool
}

// ServiceInterface exposes the loan lifecycle.
type ServiceInterface interface {
	BorrowBook(ctx context.Context, actor Actor, req model.BorrowRequest) (*model.LoanDTO, error)
	ReturnLoan(ctx context.Context, actor Actor, loanID uuid.UUID, req model.ReturnRequest) (*model.LoanDTO, error)
	RenewLoan(ctx context.Context, actor Actor, loanID uuid.UUID) (*model.LoanDTO, error)
	GetLoan(ctx context.Context, actor Actor, loanID uuid.UUID) (*model.LoanDTO, error)

	// ListLoans serves the librarian view over every loan.
	ListLoans(ctx context.Context, req *model.ListLoansRequest) (*model.ListLoansResponse, error)

	// MyLoans serves the member view. current=true narrows to loans
	// still holding a copy.
	MyLoans(ctx context.Context, userID uuid.UUID, current bool, page, limit int) (*model.ListLoansResponse, error)

	PayFine(ctx context.Context, loanID uuid.UUID) (*model.LoanDTO, error)
	Statistics(ctx context.Context) (*model.Statistics, error)

	// PromoteOverdueLoans runs the periodic sweep. Returns the number of
	// loans promoted or refreshed.
	PromoteOverdueLoans(ctx context.Context) (int, error)
}
