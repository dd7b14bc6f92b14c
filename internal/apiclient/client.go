package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/example/courtdesk/internal/logging"
)

const (
	// CSRFCookieName is the cookie the backend stores its CSRF token in.
	CSRFCookieName = "csrftoken"
	// CSRFHeaderName is the header the backend expects the token echoed in.
	CSRFHeaderName = "X-CSRFToken"
	// SessionCookieName is the backend session cookie.
	SessionCookieName = "sessionid"
	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-ID"

	maxResponseBytes = 8 << 20
)

// Client issues JSON requests against the backend with session cookies and the
// CSRF header attached.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	jar       http.CookieJar
	timeout   time.Duration
	logger    *slog.Logger
	requestID func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient uses the provided client for transport. The client is copied so
// the caller's instance is never mutated.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			copied := *hc
			c.http = &copied
		}
	}
}

// WithCookieJar overrides the cookie jar (for example a PersistentJar).
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.jar = jar
	}
}

// WithTimeout sets the overall request timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRequestIDGenerator overrides the X-Request-ID generator.
func WithRequestIDGenerator(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.requestID = fn
		}
	}
}

// New constructs a Client bound to baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base URL: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("apiclient: base URL %q must be an absolute http(s) URL", baseURL)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	parsed.RawQuery = ""
	parsed.Fragment = ""

	c := &Client{
		baseURL:   parsed,
		timeout:   -1,
		logger:    slog.Default(),
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.timeout >= 0 {
		c.http.Timeout = c.timeout
	}
	if c.jar == nil {
		c.jar = c.http.Jar
	}
	if c.jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("apiclient: create cookie jar: %w", err)
		}
		c.jar = jar
	}
	c.http.Jar = c.jar

	return c, nil
}

// BaseURL returns the resolved backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// CSRFToken returns the current CSRF cookie value, or "" when none was issued.
func (c *Client) CSRFToken() string {
	for _, cookie := range c.jar.Cookies(c.baseURL) {
		if cookie.Name == CSRFCookieName {
			return cookie.Value
		}
	}
	return ""
}

// ForgetSession drops the session cookie from the jar so the client can no
// longer present the previous session.
func (c *Client) ForgetSession() {
	c.jar.SetCookies(c.baseURL, []*http.Cookie{{
		Name:   SessionCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	}})
}

// Do sends a request with an optional JSON body and decodes a JSON answer into
// out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	endpoint := c.endpoint(path)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &TransportError{Method: method, URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := c.requestID()
	if requestID != "" {
		req.Header.Set(RequestIDHeader, requestID)
	}
	if token := c.CSRFToken(); token != "" {
		req.Header.Set(CSRFHeaderName, token)
	}
	if !safeMethod(method) {
		req.Header.Set("Referer", c.baseURL.String()+"/")
	}

	logger := c.loggerFor(ctx).With(
		"method", method,
		"path", path,
		"request_id", requestID,
	)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.DebugContext(ctx, "request failed", "error", err, "duration", time.Since(start))
		return &TransportError{Method: method, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Method: method, URL: endpoint, StatusCode: resp.StatusCode, Err: err}
	}
	logger.DebugContext(ctx, "request completed", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failure(method, path, endpoint, resp.StatusCode, payload)
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &TransportError{Method: method, URL: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) endpoint(path string) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(path, "/")
	return u.String()
}

func (c *Client) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return c.logger
}

func failure(method, path, endpoint string, status int, body []byte) error {
	var payload map[string]any
	parsed := json.Unmarshal(body, &payload) == nil && payload != nil

	if status == http.StatusNotFound {
		return &NotFoundError{Method: method, Path: path, Payload: payload}
	}
	if parsed {
		return &StatusError{Method: method, Path: path, StatusCode: status, Payload: payload}
	}
	return &TransportError{
		Method:     method,
		URL:        endpoint,
		StatusCode: status,
		Err:        errors.New(http.StatusText(status)),
	}
}

func safeMethod(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
