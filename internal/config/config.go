package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// Config holds the whole application configuration.
// Populated from environment variables at startup.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	MinIO    MinIOConfig
	Loan     LoanConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  int // minutes
	RefreshTokenExpiry int // hours
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// LoanConfig carries the lending policy knobs.
type LoanConfig struct {
	PeriodDays     int             // default loan length
	MaxRenewals    int             // renewals allowed per loan
	DailyFineRate  decimal.Decimal // fine per overdue day
	MaxActiveLoans int             // concurrent borrowed loans per member
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Library API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "library"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry:  getEnvInt("JWT_ACCESS_EXPIRY", 15),  // 15 minutes
			RefreshTokenExpiry: getEnvInt("JWT_REFRESH_EXPIRY", 72), // 3 days
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "library"),
			UseSSL:    false,
		},
		Loan: LoanConfig{
			PeriodDays:     getEnvInt("LOAN_PERIOD_DAYS", 14),
			MaxRenewals:    getEnvInt("LOAN_MAX_RENEWALS", 2),
			DailyFineRate:  getEnvDecimal("LOAN_DAILY_FINE", decimal.NewFromInt(1)),
			MaxActiveLoans: getEnvInt("LOAN_MAX_ACTIVE", 5),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the config for unusable values.
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}

	if c.Loan.PeriodDays < 1 {
		return fmt.Errorf("LOAN_PERIOD_DAYS must be at least 1")
	}
	if c.Loan.MaxRenewals < 0 {
		return fmt.Errorf("LOAN_MAX_RENEWALS must not be negative")
	}
	if c.Loan.DailyFineRate.IsNegative() {
		return fmt.Errorf("LOAN_DAILY_FINE must not be negative")
	}
	if c.Loan.MaxActiveLoans < 1 {
		return fmt.Errorf("LOAN_MAX_ACTIVE must be at least 1")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
