package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRuntimeConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	cfg := DefaultRuntimeConfig()
	if cfg.PageSize != 5 || cfg.DefaultSort != "createdAt:desc" {
		t.Fatalf("unexpected paging defaults: %+v", cfg)
	}
	if cfg.BulkConcurrency != 4 || cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("unexpected runtime defaults: %+v", cfg)
	}
	if cfg.StatePath() != filepath.Join("/tmp/xdg", "taskboard", "state.db") {
		t.Fatalf("unexpected state path: %s", cfg.StatePath())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TASKBOARD_API_URL", "https://tasks.example.com/api/")
	t.Setenv("TASKBOARD_PAGE_SIZE", "10")
	t.Setenv("TASKBOARD_DEFAULT_SORT", "dueDate:asc")
	t.Setenv("TASKBOARD_REQUEST_TIMEOUT", "2s")
	t.Setenv("TASKBOARD_BULK_CONCURRENCY", "8")
	t.Setenv("TASKBOARD_STATE_DIR", dir)
	t.Setenv("TASKBOARD_TOAST_DURATION", "500ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "https://tasks.example.com/api" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.APIBaseURL)
	}
	if cfg.PageSize != 10 || cfg.DefaultSort != "dueDate:asc" || cfg.BulkConcurrency != 8 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.RequestTimeout != 2*time.Second || cfg.ToastDuration != 500*time.Millisecond {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
	if cfg.LogPath() != filepath.Join(dir, "taskboard.log") {
		t.Fatalf("unexpected log path: %s", cfg.LogPath())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("TASKBOARD_STATE_DIR", t.TempDir())
	t.Setenv("TASKBOARD_PAGE_SIZE", "0")
	t.Setenv("TASKBOARD_DEFAULT_SORT", "title:asc")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "page size") || !strings.Contains(err.Error(), "title:asc") {
		t.Fatalf("expected both problems reported, got %v", err)
	}
}
