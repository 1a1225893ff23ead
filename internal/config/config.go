package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Email   EmailConfig
	Scan    ScanConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Host string
	// PublicBaseURL is the externally reachable base URL used when building
	// report document links embedded in notification emails
	PublicBaseURL string
}

// MongoDBConfig holds MongoDB connection details
type MongoDBConfig struct {
	URI        string
	Username   string
	Password   string
	Host       string
	Port       string
	Database   string
	AuthSource string // Database to authenticate against (default: admin)
}

// EmailConfig holds SendGrid email configuration
type EmailConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// ScanConfig holds the scan engine's time accounting parameters
type ScanConfig struct {
	// TimeBudget is the wall-clock budget for one scan invocation, kept
	// safely below the host's hard execution ceiling to leave margin for
	// checkpoint writes
	TimeBudget time.Duration
	// ContinuationDelay is how far in the future a suspended scan schedules
	// its own re-invocation
	ContinuationDelay time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:          getEnv("PORT", "8086"),
			Host:          getEnv("HOST", "0.0.0.0"),
			PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8086"),
		},
		MongoDB: MongoDBConfig{
			URI:        getEnv("MONGODB_URI", ""),
			Username:   getEnv("MONGODB_USERNAME", ""),
			Password:   getEnv("MONGODB_PASSWORD", ""),
			Host:       getEnv("MONGODB_HOST", "localhost"),
			Port:       getEnv("MONGODB_PORT", "27017"),
			Database:   getEnv("MONGODB_DATABASE", "reminders"),
			AuthSource: getEnv("MONGODB_AUTH_SOURCE", "admin"),
		},
		Email: EmailConfig{
			APIKey:    getEnv("SENDGRID_API_KEY", ""),
			FromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
			FromName:  getEnv("SENDGRID_FROM_NAME", "Task Reminders"),
		},
		Scan: ScanConfig{
			TimeBudget:        time.Duration(getEnvInt("SCAN_TIME_BUDGET_MS", 240000)) * time.Millisecond,
			ContinuationDelay: time.Duration(getEnvInt("SCAN_CONTINUATION_DELAY_MS", 60000)) * time.Millisecond,
		},
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ValidateConfig validates that required configuration values are present
func ValidateConfig(config *Config) error {
	if config.Scan.TimeBudget <= 0 {
		return fmt.Errorf("SCAN_TIME_BUDGET_MS must be positive")
	}
	if config.Scan.ContinuationDelay <= 0 {
		return fmt.Errorf("SCAN_CONTINUATION_DELAY_MS must be positive")
	}
	return nil
}

// Helper functions for environment variable access
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
