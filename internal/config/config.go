package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            string
	Environment     string
	SupabaseURL     string
	SupabaseDBURL   string
	SupabaseJWKSURL string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	CORSOrigins     string
	TablePrefix     string
	// Storage
	StorageDriver string // "postgres" or "memory"
	AutoMigrate   bool   // Create tables on startup
	// Versioning
	CommitTimezone *time.Location // Used for generated commit names
	// DevUserID is the identity used when no JWKS is configured (dev only)
	DevUserID string
	// Logging
	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	supabaseURL := getEnv("SUPABASE_URL", "")

	// Construct JWKS URL from Supabase URL
	jwksURL := ""
	if supabaseURL != "" {
		jwksURL = supabaseURL + "/auth/v1/.well-known/jwks.json"
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     env,
		SupabaseURL:     supabaseURL,
		SupabaseDBURL:   getEnv("SUPABASE_DB_URL", ""),
		SupabaseJWKSURL: jwksURL,
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:     tablePrefix,
		StorageDriver:   getEnv("STORAGE_DRIVER", getDefaultStorageDriver(env)),
		AutoMigrate:     getEnv("AUTO_MIGRATE", "false") == "true",
		CommitTimezone:  getLocation(getEnv("COMMIT_TIMEZONE", "UTC")),
		DevUserID:       getEnv("DEV_USER_ID", "dev-user"),
		LogDir:          getEnv("LOG_DIR", ""),
		LogMaxFiles:     getEnvInt("LOG_MAX_FILES", 10),
	}
}

// getDefaultStorageDriver returns the storage backend based on environment
func getDefaultStorageDriver(env string) string {
	if env == "prod" {
		return "postgres"
	}
	if os.Getenv("SUPABASE_DB_URL") == "" {
		return "memory" // No database configured - run on the in-memory store
	}
	return "postgres"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

// getLocation falls back to UTC for unknown zone names
func getLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
