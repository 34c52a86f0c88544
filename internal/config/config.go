package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseType          string
	DatabaseURL           string
	Port                  string
	BindIP                string
	AdminAPIKey           string
	AllowedOrigins        []string
	RateLimitPerMinute    int
	RequestTimeoutSeconds int
	SnapshotIntervalHours int
	EnableSnapshotWorker  bool
	Debug                 bool
	LogFormat             string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; variables already set win.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseType:          getEnv("DATABASE_TYPE", "sqlite"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		Port:                  getEnv("PORT", "8080"),
		BindIP:                getEnv("IP", "0.0.0.0"),
		AdminAPIKey:           getEnv("ADMIN_API_KEY", ""),
		AllowedOrigins:        getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		RateLimitPerMinute:    getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		RequestTimeoutSeconds: getEnvInt("REQUEST_TIMEOUT_SECONDS", 30),
		SnapshotIntervalHours: getEnvInt("SNAPSHOT_INTERVAL_HOURS", 24),
		EnableSnapshotWorker:  getEnvBool("ENABLE_SNAPSHOT_WORKER", false),
		Debug:                 getEnvBool("DEBUG", false),
		LogFormat:             getEnv("LOG_FORMAT", "json"),
	}

	if cfg.DatabaseURL == "" && cfg.DatabaseType == "sqlite" {
		cfg.DatabaseURL = "charityprep.db"
	}

	return cfg
}

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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping empty entries
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
