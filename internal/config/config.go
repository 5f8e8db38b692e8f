package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Database       DatabaseConfig
	JWT            JWTConfig
	App            AppConfig
	Payroll        PayrollConfig
	Reconciliation ReconciliationConfig
	CORS           CORSConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
	// Store selects the persistence backend, StorePostgres or StoreMemory
	Store string
}

type PayrollConfig struct {
	OvertimeMultiplier   decimal.Decimal
	StandardMonthlyHours decimal.Decimal
}

type ReconciliationConfig struct {
	JournalURL     string
	JournalAPIKey  string
	JournalTimeout time.Duration
	RelayInterval  time.Duration
	BatchSize      int
	MaxAttempts    int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from the environment. A .env file is optional.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs-payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Store:    strings.ToLower(getEnv("APP_STORE", StorePostgres)),
	}

	// JWT configuration
	accessExpiration, err := getEnvDuration("JWT_ACCESS_EXPIRATION_TIME", time.Hour)
	if err != nil {
		return nil, err
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: accessExpiration,
	}

	// Payroll policy
	multiplier, err := getEnvDecimal("PAYROLL_OVERTIME_MULTIPLIER", "1")
	if err != nil {
		return nil, err
	}
	monthlyHours, err := getEnvDecimal("PAYROLL_STANDARD_MONTHLY_HOURS", "208")
	if err != nil {
		return nil, err
	}

	config.Payroll = PayrollConfig{
		OvertimeMultiplier:   multiplier,
		StandardMonthlyHours: monthlyHours,
	}

	// Reconciliation outbox
	journalTimeout, err := getEnvDuration("JOURNAL_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	relayInterval, err := getEnvDuration("RECONCILIATION_RELAY_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	batchSize, err := getEnvInt("RECONCILIATION_BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}
	maxAttempts, err := getEnvInt("RECONCILIATION_MAX_ATTEMPTS", 5)
	if err != nil {
		return nil, err
	}

	config.Reconciliation = ReconciliationConfig{
		JournalURL:     strings.TrimRight(getEnv("JOURNAL_URL", ""), "/"),
		JournalAPIKey:  getEnv("JOURNAL_API_KEY", ""),
		JournalTimeout: journalTimeout,
		RelayInterval:  relayInterval,
		BatchSize:      batchSize,
		MaxAttempts:    maxAttempts,
	}

	config.CORS = CORSConfig{
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.App.Store {
	case StorePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("APP_STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.App.Store)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if !c.Payroll.OvertimeMultiplier.IsPositive() {
		return fmt.Errorf("PAYROLL_OVERTIME_MULTIPLIER must be positive")
	}
	if !c.Payroll.StandardMonthlyHours.IsPositive() {
		return fmt.Errorf("PAYROLL_STANDARD_MONTHLY_HOURS must be positive")
	}
	if c.Reconciliation.RelayInterval <= 0 {
		return fmt.Errorf("RECONCILIATION_RELAY_INTERVAL must be positive")
	}
	if c.Reconciliation.BatchSize <= 0 {
		return fmt.Errorf("RECONCILIATION_BATCH_SIZE must be positive")
	}
	if c.Reconciliation.MaxAttempts <= 0 {
		return fmt.Errorf("RECONCILIATION_MAX_ATTEMPTS must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvDecimal(key string, fallback string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnv(key, fallback))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
