package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	QRToken  QRTokenConfig
	Fraud    FraudConfig
	Cron     CronConfig
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
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Timezone       string
	AllowedOrigins []string
}

// QRTokenConfig holds the signing key and freshness window for
// location tokens.
type QRTokenConfig struct {
	Secret string
	TTL    time.Duration
}

// FraudConfig holds device-binding parameters.
type FraudConfig struct {
	ActivityWindow time.Duration
}

// CronConfig holds the auto-close sweep parameters.
type CronConfig struct {
	SweepInterval  time.Duration
	SweepBatchSize int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       getEnv("APP_TIMEZONE", "UTC"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Location token configuration
	qrTTL, err := time.ParseDuration(getEnv("QR_TOKEN_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid QR_TOKEN_TTL: %w", err)
	}
	config.QRToken = QRTokenConfig{
		Secret: getEnv("QR_TOKEN_SECRET", ""),
		TTL:    qrTTL,
	}

	// Fraud detection configuration
	activityWindow, err := time.ParseDuration(getEnv("DEVICE_ACTIVITY_WINDOW", "2h"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEVICE_ACTIVITY_WINDOW: %w", err)
	}
	config.Fraud = FraudConfig{
		ActivityWindow: activityWindow,
	}

	// Auto-close sweep configuration
	sweepInterval, err := time.ParseDuration(getEnv("SWEEP_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL: %w", err)
	}
	sweepBatchSize, err := strconv.Atoi(getEnv("SWEEP_BATCH_SIZE", "500"))
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_BATCH_SIZE: %w", err)
	}
	config.Cron = CronConfig{
		SweepInterval:  sweepInterval,
		SweepBatchSize: sweepBatchSize,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.QRToken.Secret == "" {
		return fmt.Errorf("QR_TOKEN_SECRET is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
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

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	return strings.Split(value, ",")
}
