package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort       int
	DatabasePath     string
	UploadDir        string // Base path for uploaded photo files
	SnapshotSchedule string // Standard cron expression for stats snapshots
	AllowedOrigins   []string
}

// Load reads a .env file if one exists, then loads configuration from
// environment variables with defaults.
func Load() (*Config, error) {
	// Missing .env is fine; environment variables still apply.
	_ = godotenv.Load()

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	origins := strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return &Config{
		ServerPort:       port,
		DatabasePath:     getEnv("DATABASE_PATH", "./directory.db"),
		UploadDir:        getEnv("UPLOAD_DIR", "./uploads"),
		SnapshotSchedule: getEnv("SNAPSHOT_SCHEDULE", "* * * * *"),
		AllowedOrigins:   origins,
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
