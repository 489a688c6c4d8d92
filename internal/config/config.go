package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// Config holds all process-wide settings. Values are read once at startup
// and immutable afterwards.
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	ServerPort string

	// Transfer pricing, loaded as exact decimals.
	FeePercentage        decimal.Decimal
	FeeCap               decimal.Decimal
	CommissionPercentage decimal.Decimal

	// Optional summary read cache. Caching is disabled when RedisAddr is empty.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Background jobs (5-field cron expressions).
	SchedulerEnabled    bool
	CommissionSweepCron string
	DailySummaryCron    string

	// Seed demo accounts on first start against an empty database.
	SeedData bool
}

// Load reads configuration from the environment, falling back to defaults.
func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "money_transfer"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		ServerPort: getEnv("SERVER_PORT", "8080"),

		FeePercentage:        getDecimalEnv("TRANSFER_FEE_PERCENTAGE", "0.005"),
		FeeCap:               getDecimalEnv("TRANSFER_FEE_CAP", "50.00"),
		CommissionPercentage: getDecimalEnv("TRANSFER_COMMISSION_PERCENTAGE", "0.20"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		SchedulerEnabled:    getBoolEnv("SCHEDULER_ENABLED", true),
		CommissionSweepCron: getEnv("COMMISSION_SWEEP_CRON", "0 1 * * *"),
		DailySummaryCron:    getEnv("DAILY_SUMMARY_CRON", "30 2 * * *"),

		SeedData: getBoolEnv("SEED_DATA", true),
	}
}

// GetDBConnectionString builds the lib/pq connection string.
func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDecimalEnv(key, fallback string) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return decimal.RequireFromString(fallback)
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
