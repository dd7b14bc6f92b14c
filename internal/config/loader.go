package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/example/courtdesk/internal/logging"
)

const (
	defaultHost        = "localhost"
	defaultDevAPIURL   = "http://127.0.0.1:8000"
	defaultAPIURL      = "http://16.171.154.218/api"
	defaultStubAddr    = "127.0.0.1:8000"
	defaultLogLevel    = "warn"
	defaultTrendDays   = 7
	defaultPollEvery   = 30 * time.Second
	defaultHTTPTimeout = 30 * time.Second
)

// Config captures environment driven configuration values for the console.
type Config struct {
	Host           string
	DevAPIURL      string
	APIURL         string
	BaseURL        string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	StatePath      string
	LogLevel       string
	TrendDays      int
	StubAddr       string
}

// Load parses configuration values from the current process environment.
//
// Every field is optional. Values that are present but malformed are collected
// and reported together so a single run surfaces every mistake.
func Load() (Config, error) {
	cfg := Config{
		Host:           defaultHost,
		DevAPIURL:      defaultDevAPIURL,
		APIURL:         defaultAPIURL,
		PollInterval:   defaultPollEvery,
		RequestTimeout: defaultHTTPTimeout,
		StatePath:      defaultStatePath(),
		LogLevel:       defaultLogLevel,
		TrendDays:      defaultTrendDays,
		StubAddr:       defaultStubAddr,
	}

	invalid := make([]string, 0, 4)

	if host := strings.TrimSpace(os.Getenv("COURTDESK_HOST")); host != "" {
		cfg.Host = host
	}

	for _, item := range []struct {
		key    string
		target *string
	}{
		{"COURTDESK_DEV_API_URL", &cfg.DevAPIURL},
		{"COURTDESK_API_URL", &cfg.APIURL},
		{"COURTDESK_BASE_URL", &cfg.BaseURL},
	} {
		value := strings.TrimSpace(os.Getenv(item.key))
		if value == "" {
			continue
		}
		if !validURL(value) {
			invalid = append(invalid, item.key)
			continue
		}
		*item.target = strings.TrimRight(value, "/")
	}

	if value := strings.TrimSpace(os.Getenv("COURTDESK_POLL_INTERVAL")); value != "" {
		interval, err := time.ParseDuration(value)
		if err != nil || interval <= 0 {
			invalid = append(invalid, "COURTDESK_POLL_INTERVAL")
		} else {
			cfg.PollInterval = interval
		}
	}

	if value := strings.TrimSpace(os.Getenv("COURTDESK_REQUEST_TIMEOUT")); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil || timeout < 0 {
			invalid = append(invalid, "COURTDESK_REQUEST_TIMEOUT")
		} else {
			cfg.RequestTimeout = timeout
		}
	}

	if path := strings.TrimSpace(os.Getenv("COURTDESK_STATE_PATH")); path != "" {
		cfg.StatePath = path
	}

	if level := strings.TrimSpace(os.Getenv("COURTDESK_LOG_LEVEL")); level != "" {
		if _, err := logging.ParseLevel(level); err != nil {
			invalid = append(invalid, "COURTDESK_LOG_LEVEL")
		} else {
			cfg.LogLevel = strings.ToLower(level)
		}
	}

	if value := strings.TrimSpace(os.Getenv("COURTDESK_TREND_DAYS")); value != "" {
		days, err := strconv.Atoi(value)
		if err != nil || days <= 0 {
			invalid = append(invalid, "COURTDESK_TREND_DAYS")
		} else {
			cfg.TrendDays = days
		}
	}

	if addr := strings.TrimSpace(os.Getenv("COURTDESK_STUB_ADDR")); addr != "" {
		cfg.StubAddr = addr
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func validURL(value string) bool {
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "courtdesk.db"
	}
	return filepath.Join(home, ".courtdesk", "state.db")
}
