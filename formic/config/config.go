// Package config loads the service configuration from the environment, with
// an optional .env file for development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config containing all the configuration values for a service.
type Config struct {
	// Port the web server listens on
	Port uint16
	// Path to the sqlite database file
	DBPath string
	// Secret used to sign bearer tokens
	JWTSecret string
	// Maximum accepted upload size per submission, in megabytes
	MaxUploadMB int64
	// Default page size for paginated listings
	PageSize int
}

// Load reads the configuration from the environment.  A .env file in the
// working directory is read first if present; real environment variables win.
func Load() *Config {
	godotenv.Load()
	return &Config{
		Port:        uint16(getEnvInt("FORMIC_PORT", 3000)),
		DBPath:      getEnv("FORMIC_DB_PATH", "./formic.db"),
		JWTSecret:   getEnv("FORMIC_JWT_SECRET", "formic-dev-secret-change-me"),
		MaxUploadMB: int64(getEnvInt("FORMIC_MAX_UPLOAD_MB", 12)),
		PageSize:    getEnvInt("FORMIC_PAGE_SIZE", 10),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
