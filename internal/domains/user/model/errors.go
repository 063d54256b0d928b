package model

import "errors"

// Error codes
const (
	ErrCodeUserNotFound       = "USR001"
	ErrCodeEmailExists        = "USR002"
	ErrCodeUsernameExists     = "USR003"
	ErrCodeInvalidCredentials = "USR004"
	ErrCodeInactiveMember     = "USR005"
	ErrCodeInvalidToken       = "USR006"
	ErrCodeSamePassword       = "USR007"
	ErrCodeUnauthorized       = "USR008"
)

// Errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrUsernameExists     = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveMember     = errors.New("membership is inactive")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrSamePassword       = errors.New("new password cannot be same as current password")
	ErrUnauthorized       = errors.New("unauthorized to perform this action")
)
