package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/helix")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.SimulationDelay != 2500*time.Millisecond {
		t.Fatalf("expected default delay 2.5s, got %v", cfg.SimulationDelay)
	}
	if cfg.AccessTTL() != 15*time.Minute {
		t.Fatalf("expected access ttl 15m, got %v", cfg.AccessTTL())
	}
	if cfg.RefreshTTL() != 30*24*time.Hour {
		t.Fatalf("expected refresh ttl 30d, got %v", cfg.RefreshTTL())
	}
	if !cfg.MigrateOnStart {
		t.Fatalf("expected migrations on start by default")
	}
	if cfg.DBMaxConns != 10 || cfg.DBMinConns != 1 || cfg.DBConnectTimeout != 5*time.Second {
		t.Fatalf("unexpected pool defaults: %+v", cfg)
	}
	if cfg.OTPRequestWindow != 10*time.Minute || cfg.OTPRequestBudget != 3 {
		t.Fatalf("unexpected otp limits: %v/%d", cfg.OTPRequestWindow, cfg.OTPRequestBudget)
	}
}

func TestLoadConfig_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when DATABASE_URL is missing")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/helix")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SIMULATION_DELAY", "0s")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("DB_MAX_CONNS", "25")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTPPort != "9090" || cfg.SimulationDelay != 0 || cfg.RedisDB != 2 || cfg.DBMaxConns != 25 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
