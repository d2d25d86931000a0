package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ASTROGUIDE_ENV", "test")
	t.Setenv("ASTROGUIDE_STATE_DIR", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.BaseURL != DefaultAPIBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.API.BaseURL, DefaultAPIBaseURL)
	}
	if cfg.Storage.DBPath != filepath.Join(dir, "client.db") {
		t.Errorf("DBPath = %q", cfg.Storage.DBPath)
	}
	if cfg.RateLimitCooldown != 30*time.Second {
		t.Errorf("RateLimitCooldown = %v, want 30s", cfg.RateLimitCooldown)
	}
	if cfg.Paging.ConversationLimit != 20 || cfg.Paging.MessageLimit != 50 {
		t.Errorf("unexpected paging defaults: %+v", cfg.Paging)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ASTROGUIDE_ENV", "production")
	t.Setenv("ASTROGUIDE_STATE_DIR", t.TempDir())
	t.Setenv("ASTROGUIDE_API_BASE_URL", "https://guide.example.com/api/v0")
	t.Setenv("ASTROGUIDE_REQUEST_TIMEOUT", "3s")
	t.Setenv("ASTROGUIDE_MESSAGE_PAGE_SIZE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("expected production env")
	}
	if cfg.API.RequestTimeout != 3*time.Second {
		t.Errorf("RequestTimeout = %v, want 3s", cfg.API.RequestTimeout)
	}
	if cfg.Paging.MessageLimit != 50 {
		t.Errorf("invalid int should fall back, got %d", cfg.Paging.MessageLimit)
	}
}

func TestLoadRejectsEmptyBaseURL(t *testing.T) {
	t.Setenv("ASTROGUIDE_ENV", "test")
	t.Setenv("ASTROGUIDE_STATE_DIR", t.TempDir())
	t.Setenv("ASTROGUIDE_API_BASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for empty base url")
	}
}
