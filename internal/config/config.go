package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabaseType string
	DatabasePath string
	DatabaseURL  string
	StorageKey   string
	ExportDir    string
	LogLevel     string
	Debug        bool

	// Amazon SES notifications; disabled when SESFromEmail is empty
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	NotifyEmail  string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from the current process environment only
func FromEnv() *Config {
	return &Config{
		DatabaseType: strings.ToLower(getEnv("DATABASE_TYPE", "sqlite")),
		DatabasePath: getEnv("DB_PATH", "./flashcards.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		StorageKey:   getEnv("STORAGE_KEY", "mathFlashcards"),
		ExportDir:    getEnv("EXPORT_DIR", "."),
		LogLevel:     strings.ToLower(getEnv("LOG_LEVEL", "warn")),
		Debug:        getEnvBool("DEBUG", false),
		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Math Flashcards"),
		NotifyEmail:  getEnv("NOTIFY_EMAIL", ""),
	}
}

// EmailEnabled reports whether notifications should also go out by email
func (c *Config) EmailEnabled() bool {
	return c.SESFromEmail != "" && c.NotifyEmail != ""
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return defaultValue
	}
}
