package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrMissingSecret is returned when JWT_SECRET is not set.
var ErrMissingSecret = errors.New("JWT_SECRET must be set")

// Config holds the application configuration.
type Config struct {
	ServerPort     int
	DataDir        string // Directory holding users.json and students.json
	DatabasePath   string
	BackupPath     string
	BackupSchedule string // Standard cron expression, empty disables scheduled backups
	JWTSecret      string
	TokenTTL       time.Duration
	LogLevel       string
	CORSOrigins    []string
	Production     bool
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, err
	}

	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		return nil, ErrMissingSecret
	}

	return &Config{
		ServerPort:     port,
		DataDir:        getEnv("DATA_DIR", "."),
		DatabasePath:   getEnv("DATABASE_PATH", "./students.db"),
		BackupPath:     getEnv("BACKUP_PATH", "./backups"),
		BackupSchedule: getEnv("BACKUP_SCHEDULE", ""),
		JWTSecret:      secret,
		TokenTTL:       ttl,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		Production:     getEnv("APP_ENV", "") == "production",
	}, nil
}

// UsersFile is the path of the user directory snapshot.
func (c *Config) UsersFile() string {
	return filepath.Join(c.DataDir, "users.json")
}

// StudentsFile is the path of the record store snapshot.
func (c *Config) StudentsFile() string {
	return filepath.Join(c.DataDir, "students.json")
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
