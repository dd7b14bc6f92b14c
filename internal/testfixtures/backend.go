package testfixtures

import (
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/courtdesk/internal/apiclient"
	"github.com/example/courtdesk/internal/application"
	"github.com/example/courtdesk/internal/stubapi"
)

// Backend is a seeded in-memory backend served over HTTP for the duration of
// a test.
type Backend struct {
	Server *stubapi.Server
	HTTP   *httptest.Server
	Clock  *Clock
}

// BackendOption configures a Backend.
type BackendOption func(*backendConfig)

type backendConfig struct {
	clock       *Clock
	requireAuth bool
	seed        bool
	logger      *slog.Logger
}

// WithBackendClock overrides the backend's time source.
func WithBackendClock(clock *Clock) BackendOption {
	return func(cfg *backendConfig) { cfg.clock = clock }
}

// WithoutAuth lets anonymous clients read and write collections.
func WithoutAuth() BackendOption {
	return func(cfg *backendConfig) { cfg.requireAuth = false }
}

// Empty skips the demo data.
func Empty() BackendOption {
	return func(cfg *backendConfig) { cfg.seed = false }
}

// WithBackendLogger routes the backend's request log to logger.
func WithBackendLogger(logger *slog.Logger) BackendOption {
	return func(cfg *backendConfig) { cfg.logger = logger }
}

// NewBackend starts a seeded backend that requires a session for resource
// requests. It is shut down when the test ends.
func NewBackend(tb testing.TB, opts ...BackendOption) *Backend {
	tb.Helper()

	cfg := backendConfig{requireAuth: true, seed: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.clock == nil {
		cfg.clock = NewClock(time.Time{})
	}

	srv := stubapi.New(stubapi.Options{
		Logger:         cfg.logger,
		Now:            cfg.clock.Now,
		Location:       time.UTC,
		RequireAuth:    cfg.requireAuth,
		PasswordParams: &stubapi.FastArgon2idParams,
	})
	if cfg.seed {
		if err := stubapi.Seed(srv.Store(), time.UTC); err != nil {
			tb.Fatalf("failed to seed backend: %v", err)
		}
	}
	ts := httptest.NewServer(srv)
	tb.Cleanup(ts.Close)

	return &Backend{Server: srv, HTTP: ts, Clock: cfg.clock}
}

// BaseURL is the API root clients are configured with.
func (b *Backend) BaseURL() string {
	return b.HTTP.URL + "/api"
}

// Console wires the application services to a backend the way the command
// line does, minus persistence.
type Console struct {
	Client    *apiclient.Client
	Session   *application.SessionStore
	Auth      *application.AuthService
	Guard     *application.Guard
	Resources *application.Resources
	Refresher *application.Refresher
	Cycles    *Sequence
}

// NewConsole builds a Console against b. The refresher is stopped when the
// test ends.
func NewConsole(tb testing.TB, b *Backend) *Console {
	tb.Helper()

	client, err := apiclient.New(b.BaseURL(), apiclient.WithTimeout(5*time.Second))
	if err != nil {
		tb.Fatalf("failed to create client: %v", err)
	}
	session := application.NewSessionStore()
	resources := application.NewResources(client)
	cycles := NewSequence("cycle")
	refresher := application.NewRefresher(resources, application.RefresherOptions{
		Interval: time.Hour,
		Now:      b.Clock.Now,
		CycleID:  cycles.Next,
	})
	tb.Cleanup(refresher.Stop)

	return &Console{
		Client:    client,
		Session:   session,
		Auth:      application.NewAuthService(client, session),
		Guard:     application.NewGuard(session),
		Resources: resources,
		Refresher: refresher,
		Cycles:    cycles,
	}
}
