package model

import "errors"

// Error codes
const (
	ErrCodeLoanNotFound        = "LOAN001"
	ErrCodeBorrowLimitExceeded = "LOAN002"
	ErrCodeBookUnavailable     = "LOAN003"
	ErrCodeDuplicateActiveLoan = "LOAN004"
	ErrCodeNotRenewable        = "LOAN005"
	ErrCodeInvalidState        = "LOAN006"
	ErrCodeBorrowConflict      = "LOAN007"
	ErrCodeMemberNotEligible   = "LOAN008"
	ErrCodeNoFineDue           = "LOAN009"
)

// Errors
var (
	ErrLoanNotFound        = errors.New("loan not found")
	ErrBorrowLimitExceeded = errors.New("active loan limit reached")
	ErrBookUnavailable     = errors.New("no copy available for borrowing")
	ErrDuplicateActiveLoan = errors.New("user already holds an active loan for this book")
	ErrNotRenewable        = errors.New("loan cannot be renewed")
	ErrInvalidState        = errors.New("operation not valid for the loan state")
	ErrBorrowConflict      = errors.New("book row is locked by a concurrent borrow, retry")
	ErrMemberNotEligible   = errors.New("membership is not eligible to borrow")
	ErrNoFineDue           = errors.New("loan has no unpaid fine")
)
