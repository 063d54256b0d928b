package model

import "errors"

// Error codes
const (
	ErrCodeBookNotFound       = "BOOK001"
	ErrCodeISBNExists         = "BOOK002"
	ErrCodeBookUnavailable    = "BOOK003"
	ErrCodeCapacityViolation  = "BOOK004"
	ErrCodeBookHasLoans       = "BOOK005"
	ErrCodeInvalidImage       = "BOOK006"
	ErrCodeStorageUnavailable = "BOOK007"
)

// Errors
var (
	ErrBookNotFound       = errors.New("book not found")
	ErrISBNExists         = errors.New("ISBN already registered")
	ErrBookUnavailable    = errors.New("no copy available for borrowing")
	ErrCapacityViolation  = errors.New("copy counters out of range")
	ErrBookHasLoans       = errors.New("book has loan history and cannot be deleted")
	ErrInvalidImage       = errors.New("cover image is invalid")
	ErrStorageUnavailable = errors.New("cover storage is not available")
)
