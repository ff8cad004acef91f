package rango

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "Rango" || cfg.Addr != ":8000" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.VisitStore != VisitStoreSQLite {
		t.Errorf("VisitStore = %q, want sqlite", cfg.VisitStore)
	}
	if cfg.VisitTTL != 14*24*time.Hour {
		t.Errorf("VisitTTL = %v", cfg.VisitTTL)
	}
	if cfg.SessionSecret != "s3cret" {
		t.Errorf("SessionSecret = %q", cfg.SessionSecret)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("VISIT_STORE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/2")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.VisitStore != VisitStoreRedis || cfg.RedisURL != "redis://localhost:6379/2" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.CacheTTL != 30*time.Second || !cfg.CookieSecure {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfigBadDuration(t *testing.T) {
	t.Setenv("VISIT_TTL", "forever")
	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for bad duration")
	}
}

func TestParseLogLevel(t *testing.T) {
	if parseLogLevel("WARN") != parseLogLevel("warning") {
		t.Error("warn aliases differ")
	}
	if parseLogLevel("bogus") != parseLogLevel("info") {
		t.Error("unknown level should fall back to info")
	}
}
