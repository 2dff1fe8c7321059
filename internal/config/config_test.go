package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		"SERVER_ADDR", "SERVER_PORT", "REGISTRY_DB_PATH", "TEAM_DB_DIR",
		"JWT_SECRET", "JWT_ISSUER", "ACCESS_TOKEN_TTL",
		"TEAM_RECHECK_MEMBERSHIP", "RATE_LIMIT", "RATE_LIMIT_WINDOW", "LOG_LEVEL",
	} {
		// t.Setenv first so the original value is restored after the test.
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "test-secret-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddr() != "0.0.0.0:8080" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr(), "0.0.0.0:8080")
	}
	if cfg.RegistryDBPath != "data/registry.db" {
		t.Errorf("RegistryDBPath = %q", cfg.RegistryDBPath)
	}
	if cfg.TeamDBDir != "data/teams" {
		t.Errorf("TeamDBDir = %q", cfg.TeamDBDir)
	}
	if cfg.AccessTokenTTL != time.Hour {
		t.Errorf("AccessTokenTTL = %v, want %v", cfg.AccessTokenTTL, time.Hour)
	}
	if cfg.RecheckMembership {
		t.Error("RecheckMembership should default to false")
	}
}

func TestLoad_RequiredJWTSecret(t *testing.T) {
	clearEnv(t)

	if _, err := Load(); err == nil {
		t.Error("expected error when JWT_SECRET is missing")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "test-secret-key")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ACCESS_TOKEN_TTL", "30m")
	t.Setenv("TEAM_RECHECK_MEMBERSHIP", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want 9090", cfg.ServerPort)
	}
	if cfg.AccessTokenTTL != 30*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 30m", cfg.AccessTokenTTL)
	}
	if !cfg.RecheckMembership {
		t.Error("expected RecheckMembership to be enabled")
	}
}
