package config

import (
	"os"
	"testing"
	"time"
)

var allKeys = []string{
	"COURTDESK_HOST",
	"COURTDESK_DEV_API_URL",
	"COURTDESK_API_URL",
	"COURTDESK_BASE_URL",
	"COURTDESK_POLL_INTERVAL",
	"COURTDESK_REQUEST_TIMEOUT",
	"COURTDESK_STATE_PATH",
	"COURTDESK_LOG_LEVEL",
	"COURTDESK_TREND_DAYS",
	"COURTDESK_STUB_ADDR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		// Setenv registers the restore hook; Unsetenv then removes the value.
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.Host != "localhost" {
			t.Fatalf("expected default host localhost, got %q", cfg.Host)
		}
		if cfg.DevAPIURL != "http://127.0.0.1:8000" {
			t.Fatalf("unexpected default dev API URL: %q", cfg.DevAPIURL)
		}
		if cfg.PollInterval != 30*time.Second {
			t.Fatalf("expected 30s poll interval, got %s", cfg.PollInterval)
		}
		if cfg.TrendDays != 7 {
			t.Fatalf("expected 7 trend days, got %d", cfg.TrendDays)
		}
		if cfg.BaseURL != "" {
			t.Fatalf("expected no base URL override, got %q", cfg.BaseURL)
		}
		if cfg.StatePath == "" {
			t.Fatalf("expected a default state path")
		}
	})

	t.Run("parses duration, numeric and url fields", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("COURTDESK_HOST", "court.example.org")
		t.Setenv("COURTDESK_API_URL", "https://court.example.org/api/")
		t.Setenv("COURTDESK_POLL_INTERVAL", "5s")
		t.Setenv("COURTDESK_REQUEST_TIMEOUT", "0s")
		t.Setenv("COURTDESK_TREND_DAYS", "14")
		t.Setenv("COURTDESK_LOG_LEVEL", "DEBUG")
		t.Setenv("COURTDESK_STATE_PATH", "/tmp/courtdesk.db")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.Host != "court.example.org" {
			t.Fatalf("unexpected host %q", cfg.Host)
		}
		if cfg.APIURL != "https://court.example.org/api" {
			t.Fatalf("expected trailing slash to be trimmed, got %q", cfg.APIURL)
		}
		if cfg.PollInterval != 5*time.Second {
			t.Fatalf("expected 5s poll interval, got %s", cfg.PollInterval)
		}
		if cfg.RequestTimeout != 0 {
			t.Fatalf("expected disabled timeout, got %s", cfg.RequestTimeout)
		}
		if cfg.TrendDays != 14 {
			t.Fatalf("expected 14 trend days, got %d", cfg.TrendDays)
		}
		if cfg.LogLevel != "debug" {
			t.Fatalf("expected lower-cased log level, got %q", cfg.LogLevel)
		}
		if cfg.StatePath != "/tmp/courtdesk.db" {
			t.Fatalf("unexpected state path %q", cfg.StatePath)
		}
	})

	t.Run("reports every invalid value", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("COURTDESK_BASE_URL", "not a url")
		t.Setenv("COURTDESK_POLL_INTERVAL", "-1s")
		t.Setenv("COURTDESK_TREND_DAYS", "zero")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		expected := "invalid environment values: COURTDESK_BASE_URL, COURTDESK_POLL_INTERVAL, COURTDESK_TREND_DAYS"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})
}
