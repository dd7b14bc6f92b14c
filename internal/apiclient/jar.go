package apiclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"golang.org/x/net/publicsuffix"
)

// CookieStore persists cookies per backend host between process runs.
type CookieStore interface {
	LoadCookies(ctx context.Context, host string) ([]*http.Cookie, error)
	SaveCookies(ctx context.Context, host string, cookies []*http.Cookie) error
}

// PersistentJar is an http.CookieJar that mirrors every cookie the backend sets
// into a CookieStore, and is seeded from it on construction.
type PersistentJar struct {
	jar    *cookiejar.Jar
	store  CookieStore
	logger *slog.Logger
}

// NewPersistentJar creates a jar for base seeded with the stored cookies.
func NewPersistentJar(ctx context.Context, base string, store CookieStore, logger *slog.Logger) (*PersistentJar, error) {
	if logger == nil {
		logger = slog.Default()
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base URL: %w", err)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("apiclient: create cookie jar: %w", err)
	}

	pj := &PersistentJar{jar: jar, store: store, logger: logger}
	if store == nil {
		return pj, nil
	}

	stored, err := store.LoadCookies(ctx, u.Hostname())
	if err != nil {
		return nil, fmt.Errorf("apiclient: load cookies: %w", err)
	}
	if len(stored) > 0 {
		seedURL := *u
		seedURL.Path = "/"
		jar.SetCookies(&seedURL, stored)
	}
	return pj, nil
}

// SetCookies implements http.CookieJar.
func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.jar.SetCookies(u, cookies)
	if j.store == nil || len(cookies) == 0 {
		return
	}
	if err := j.store.SaveCookies(context.Background(), u.Hostname(), cookies); err != nil {
		j.logger.Warn("failed to persist cookies", "host", u.Hostname(), "error", err)
	}
}

// Cookies implements http.CookieJar.
func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}
