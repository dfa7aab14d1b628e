package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"TABSYNC_PORT", "TABSYNC_LOG_LEVEL", "TABSYNC_DATABASE_URL", "TABSYNC_AUTH_TOKEN", "TABSYNC_MAX_BATCH", "PORT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8090" {
		t.Fatalf("default port = %q", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("default log level = %q", cfg.LogLevel)
	}
	if cfg.DatabaseURL != "file:tabsync.db" {
		t.Fatalf("default database url = %q", cfg.DatabaseURL)
	}
	if cfg.AuthToken != "" {
		t.Fatalf("default auth token = %q", cfg.AuthToken)
	}
	if cfg.MaxBatchSize != 500 {
		t.Fatalf("default max batch = %d", cfg.MaxBatchSize)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TABSYNC_PORT", "9000")
	t.Setenv("TABSYNC_MAX_BATCH", "25")
	t.Setenv("PORT", "7000")

	cfg := Load()
	if cfg.Port != "7000" {
		t.Fatalf("PORT should win, got %q", cfg.Port)
	}
	if cfg.MaxBatchSize != 25 {
		t.Fatalf("max batch = %d", cfg.MaxBatchSize)
	}
}

func TestMaxBatchIgnoresGarbage(t *testing.T) {
	t.Setenv("TABSYNC_MAX_BATCH", "-3")
	if cfg := Load(); cfg.MaxBatchSize != 500 {
		t.Fatalf("max batch = %d", cfg.MaxBatchSize)
	}
	t.Setenv("TABSYNC_MAX_BATCH", "lots")
	if cfg := Load(); cfg.MaxBatchSize != 500 {
		t.Fatalf("max batch = %d", cfg.MaxBatchSize)
	}
}
