package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.StorageDriver != StorageJSON {
		t.Errorf("StorageDriver = %q, want json", cfg.StorageDriver)
	}
	if cfg.CaptchaTTL != 5*time.Minute || cfg.CaptchaSweepInterval != 5*time.Minute {
		t.Errorf("captcha timings = %v / %v", cfg.CaptchaTTL, cfg.CaptchaSweepInterval)
	}
	if got, want := cfg.BookingsPath(), filepath.Join("data", "bookings.json"); got != want {
		t.Errorf("BookingsPath() = %q, want %q", got, want)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATA_DIR", "/var/lib/booking")
	t.Setenv("PUBLIC_BASE_URL", "https://example.com/")
	t.Setenv("STORAGE_DRIVER", "MySQL")
	t.Setenv("CAPTCHA_TTL", "90s")
	t.Setenv("EVENTS_ENABLED", "yes")

	cfg := Load()
	if !cfg.IsProduction() {
		t.Errorf("IsProduction() = false")
	}
	if cfg.CommentsPath() != filepath.Join("/var/lib/booking", "comments.json") {
		t.Errorf("CommentsPath() = %q", cfg.CommentsPath())
	}
	if cfg.PublicBaseURL != "https://example.com" {
		t.Errorf("PublicBaseURL = %q", cfg.PublicBaseURL)
	}
	if cfg.StorageDriver != StorageMySQL {
		t.Errorf("StorageDriver = %q", cfg.StorageDriver)
	}
	if cfg.CaptchaTTL != 90*time.Second {
		t.Errorf("CaptchaTTL = %v", cfg.CaptchaTTL)
	}
	if !cfg.EventsEnabled {
		t.Errorf("EventsEnabled = false")
	}
}

func TestSubmitRateLimitDefaults(t *testing.T) {
	cfg := LoadSubmitRateLimitConfig()
	if cfg.Capacity != 5 || cfg.RefillTokens != 5 || cfg.RefillInterval != 15*time.Minute {
		t.Errorf("LoadSubmitRateLimitConfig() = %+v", cfg)
	}
	if cfg.KeyStrategy != "ip" {
		t.Errorf("KeyStrategy = %q, want ip", cfg.KeyStrategy)
	}
}

func TestRateLimitNormalise(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 {
		t.Errorf("Capacity = %d, want 1", cfg.Capacity)
	}
	if cfg.TTL != 2*time.Minute {
		t.Errorf("TTL = %v, want 2m", cfg.TTL)
	}
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		val  string
		def  bool
		want bool
	}{
		{"", true, true},
		{"off", true, false},
		{"1", false, true},
		{"maybe", true, true},
	}
	for _, tt := range tests {
		t.Setenv("X_TEST_BOOL", tt.val)
		if got := envBool("X_TEST_BOOL", tt.def); got != tt.want {
			t.Errorf("envBool(%q, %v) = %v, want %v", tt.val, tt.def, got, tt.want)
		}
	}
}

func TestLoadCORSOrigins(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	if got := Load().CORSOrigins; len(got) != 1 || got[0] != "*" {
		t.Errorf("default CORSOrigins = %v", got)
	}

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	got := Load().CORSOrigins
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", got)
	}
}
