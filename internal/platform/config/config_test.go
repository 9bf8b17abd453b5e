package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HRP_API_URL", "")
	t.Setenv("HRP_IDENTITY_URL", "")
	t.Setenv("HRP_REQUEST_TIMEOUT", "")
	t.Setenv("HRP_ESTABLISH_TIMEOUT", "")

	cfg := Load()
	if cfg.APIBaseURL != "http://localhost:8080" {
		t.Fatalf("unexpected api url %q", cfg.APIBaseURL)
	}
	if cfg.IdentityURL != cfg.APIBaseURL {
		t.Fatalf("expected identity url to default to api url, got %q", cfg.IdentityURL)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Fatalf("unexpected request timeout %v", cfg.RequestTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HRP_API_URL", "https://hr.example.com")
	t.Setenv("HRP_IDENTITY_URL", "https://id.example.com")
	t.Setenv("HRP_REQUEST_TIMEOUT", "5s")
	t.Setenv("HRP_ESTABLISH_TIMEOUT", "bogus")

	cfg := Load()
	if cfg.APIBaseURL != "https://hr.example.com" {
		t.Fatalf("unexpected api url %q", cfg.APIBaseURL)
	}
	if cfg.IdentityURL != "https://id.example.com" {
		t.Fatalf("unexpected identity url %q", cfg.IdentityURL)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("unexpected request timeout %v", cfg.RequestTimeout)
	}
	// Unparseable durations fall back to the default.
	if cfg.EstablishTimeout != 10*time.Second {
		t.Fatalf("unexpected establish timeout %v", cfg.EstablishTimeout)
	}
}

func TestValidate(t *testing.T) {
	cfg := Load()
	cfg.APIBaseURL = " "
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for blank api url")
	}

	cfg = Load()
	cfg.RequestTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero timeout")
	}
}
