package utils

import (
	"os"

	"github.com/google/uuid"
)

// GetEnvVariable reads an environment variable with a fallback default.
func GetEnvVariable(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// ParseStringToUUID parses s, returning uuid.Nil on any failure.
func ParseStringToUUID(s string) uuid.UUID {
	uid, err := uuid.Parse(s)
	if err != nil || s == "" {
		return uuid.Nil
	}
	return uid
}

// StringPtr converts a string to *string, nil for empty strings.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
