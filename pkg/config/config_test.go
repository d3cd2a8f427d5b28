package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENVIRONMENT", "DATABASE_PATH", "JWT_SECRET", "JWT_EXPIRES_IN",
		"CORS_ORIGINS", "UPLOAD_PATH", "MAX_UPLOAD_SIZE",
	} {
		_ = os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.Environment != "development" {
		t.Fatalf("Environment = %q, want %q", cfg.Environment, "development")
	}
	if cfg.DatabasePath != "./data/mailbox.db" {
		t.Fatalf("DatabasePath = %q, want default", cfg.DatabasePath)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("TokenTTL = %s, want 24h", cfg.TokenTTL)
	}
	if cfg.MaxUploadSize != 10485760 {
		t.Fatalf("MaxUploadSize = %d, want 10485760", cfg.MaxUploadSize)
	}
	if cfg.Production() {
		t.Fatal("Production() = true for development environment")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_PATH", "/var/lib/mailbox/mailbox.db")
	t.Setenv("JWT_SECRET", "super-secret")
	t.Setenv("JWT_EXPIRES_IN", "1h")
	t.Setenv("CORS_ORIGINS", "https://example.com")
	t.Setenv("MAX_UPLOAD_SIZE", "2048")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Fatalf("Port = %q, want %q", cfg.Port, "9090")
	}
	if !cfg.Production() {
		t.Fatal("Production() = false for production environment")
	}
	if cfg.DatabasePath != "/var/lib/mailbox/mailbox.db" {
		t.Fatalf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.JWTSecret != "super-secret" {
		t.Fatalf("JWTSecret = %q", cfg.JWTSecret)
	}
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("TokenTTL = %s, want 1h", cfg.TokenTTL)
	}
	if cfg.CORSOrigins != "https://example.com" {
		t.Fatalf("CORSOrigins = %q", cfg.CORSOrigins)
	}
	if cfg.MaxUploadSize != 2048 {
		t.Fatalf("MaxUploadSize = %d, want 2048", cfg.MaxUploadSize)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_EXPIRES_IN", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted an invalid JWT_EXPIRES_IN")
	}
}
