package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	APIBaseURL       string
	IdentityURL      string
	CredentialsFile  string
	RequestTimeout   time.Duration
	EstablishTimeout time.Duration
	Environment      string
	LogLevel         string
}

func Load() Config {
	api := getEnv("HRP_API_URL", "http://localhost:8080")
	return Config{
		APIBaseURL:       api,
		IdentityURL:      getEnv("HRP_IDENTITY_URL", api),
		CredentialsFile:  getEnv("HRP_CREDENTIALS_FILE", defaultCredentialsFile()),
		RequestTimeout:   getEnvDuration("HRP_REQUEST_TIMEOUT", 15*time.Second),
		EstablishTimeout: getEnvDuration("HRP_ESTABLISH_TIMEOUT", 10*time.Second),
		Environment:      getEnv("HRP_ENV", "development"),
		LogLevel:         getEnv("HRP_LOG_LEVEL", "info"),
	}
}

func defaultCredentialsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hrportal/credentials.json"
	}
	return filepath.Join(home, ".hrportal", "credentials.json")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("HRP_API_URL is required")
	}
	if strings.TrimSpace(c.IdentityURL) == "" {
		return fmt.Errorf("HRP_IDENTITY_URL is required")
	}
	if strings.TrimSpace(c.CredentialsFile) == "" {
		return fmt.Errorf("HRP_CREDENTIALS_FILE is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("HRP_REQUEST_TIMEOUT must be positive")
	}
	if c.EstablishTimeout <= 0 {
		return fmt.Errorf("HRP_ESTABLISH_TIMEOUT must be positive")
	}
	return nil
}
