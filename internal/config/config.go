package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// GitHub. Fallback token used when a request carries no credential of
	// its own; optional, unauthenticated access works with tighter limits.
	GitHubToken string

	// Report history storage: "none", "sqlite" or "postgres"
	StorageType string
	SQLitePath  string
	PostgresURL string

	// API server
	APIPort string
	APIHost string

	// Slide generation collaborator; empty disables the slides endpoints
	SlidesURL string

	// Request pacing keyed to the observed remaining quota
	PacerEnabled bool

	// Logging
	LogLevel string

	// CLI
	APIEndpoint string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	return &Config{
		GitHubToken:  getEnv("GITHUB_TOKEN", ""),
		StorageType:  getEnv("STORAGE_TYPE", "none"),
		SQLitePath:   getEnv("SQLITE_PATH", "./rewind.db"),
		PostgresURL:  getEnv("POSTGRES_URL", ""),
		APIPort:      getEnv("API_PORT", "8080"),
		APIHost:      getEnv("API_HOST", "localhost"),
		SlidesURL:    getEnv("SLIDES_URL", ""),
		PacerEnabled: getEnv("PACER_ENABLED", "false") == "true",
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		APIEndpoint:  getEnv("API_ENDPOINT", "http://localhost:8080"),
	}, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.StorageType {
	case "none", "sqlite", "postgres":
	default:
		return &ConfigError{Field: "STORAGE_TYPE", Message: "must be 'none', 'sqlite' or 'postgres'"}
	}
	if c.StorageType == "postgres" && c.PostgresURL == "" {
		return &ConfigError{Field: "POSTGRES_URL", Message: "PostgreSQL URL is required when STORAGE_TYPE is 'postgres'"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
