package model

import "errors"

// Error codes
const (
	ErrCodeRatingNotFound = "RAT001"
	ErrCodeInvalidScore   = "RAT002"
	ErrCodeUnauthorized   = "RAT003"
)

// Errors
var (
	ErrRatingNotFound = errors.New("rating not found")
	ErrInvalidScore   = errors.New("score must be between 1 and 5")
	ErrUnauthorized   = errors.New("unauthorized to perform this action")
)
