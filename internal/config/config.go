package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port          string
	DBPath        string
	MigrationsDir string
	CORSOrigins   []string
	TickInterval  time.Duration
}

func Load() Config {
	return Config{
		Port:          getEnv("PORT", "48484"),
		DBPath:        getEnv("DB_PATH", "./data/pomodoro.db"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "./migrations"),
		CORSOrigins:   getEnvList("CORS_ORIGINS", []string{"*"}),
		TickInterval:  time.Duration(getEnvInt("TICK_INTERVAL_MS", 1000)) * time.Millisecond,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
