package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port         string
	LogLevel     string
	DatabaseURL  string
	AuthToken    string
	MaxBatchSize int
}

func Load() Config {
	cfg := Config{
		Port:         envOrDefault("TABSYNC_PORT", "8090"),
		LogLevel:     envOrDefault("TABSYNC_LOG_LEVEL", "info"),
		DatabaseURL:  envOrDefault("TABSYNC_DATABASE_URL", "file:tabsync.db"),
		AuthToken:    strings.TrimSpace(os.Getenv("TABSYNC_AUTH_TOKEN")),
		MaxBatchSize: intOrDefault(os.Getenv("TABSYNC_MAX_BATCH"), 500),
	}
	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.Port = p
	}
	return cfg
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func intOrDefault(v string, fallback int) int {
	if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && i > 0 {
		return i
	}
	return fallback
}
