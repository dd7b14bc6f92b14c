package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/courtdesk/internal/apiclient"
	"github.com/example/courtdesk/internal/application"
	"github.com/example/courtdesk/internal/config"
	"github.com/example/courtdesk/internal/logging"
	"github.com/example/courtdesk/internal/persistence/sqlite"
)

// loginRequiredError is returned by protected commands for anonymous sessions.
type loginRequiredError struct {
	path string
}

func (e *loginRequiredError) Error() string {
	return fmt.Sprintf("not logged in: run \"courtdesk login\" to open %s", e.path)
}

func (e *loginRequiredError) Unwrap() error {
	return application.ErrNotAuthenticated
}

// annotationFullScreen marks commands that own the terminal.
const annotationFullScreen = "courtdesk/full-screen"

// App is the per-invocation composition root.
type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Storage   *sqlite.Storage
	Client    *apiclient.Client
	Session   *application.SessionStore
	Auth      *application.AuthService
	Resources *application.Resources
	Guard     *application.Guard
	Refresher *application.Refresher
	Now       func() time.Time

	logFile io.Closer
}

// loadConfig reads the environment and applies command line overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if flag := cmd.Flags().Lookup("base-url"); flag != nil && flag.Changed {
		cfg.BaseURL = strings.TrimRight(strings.TrimSpace(flag.Value.String()), "/")
	}
	return cfg, nil
}

func baseURL(cfg config.Config) string {
	if cfg.BaseURL != "" {
		return cfg.BaseURL
	}
	return apiclient.ResolveBaseURL(cfg.Host, cfg.DevAPIURL, cfg.APIURL)
}

func newLogger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	return logging.New(cmd.ErrOrStderr(), logLevel(cfg))
}

func logLevel(cfg config.Config) slog.Level {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}

// fileLogger writes next to the state database so full screen commands keep
// the terminal clean.
func fileLogger(cfg config.Config) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(cfg.StatePath+".log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logging.New(f, logLevel(cfg)), f, nil
}

func newApp(ctx context.Context, cmd *cobra.Command) (*App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd, cfg)
	now := time.Now

	storage, err := sqlite.Open(ctx, cfg.StatePath, logger)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	var logFile io.Closer
	fail := func(err error) (*App, error) {
		storage.Close()
		if logFile != nil {
			logFile.Close()
		}
		return nil, err
	}
	if cmd.Annotations[annotationFullScreen] == "true" {
		if logger, logFile, err = fileLogger(cfg); err != nil {
			return fail(err)
		}
	}

	base := baseURL(cfg)
	jar, err := apiclient.NewPersistentJar(ctx, base, cookieStoreAdapter{repo: storage, now: now}, logger)
	if err != nil {
		return fail(err)
	}
	client, err := apiclient.New(base,
		apiclient.WithCookieJar(jar),
		apiclient.WithTimeout(cfg.RequestTimeout),
		apiclient.WithLogger(logger),
	)
	if err != nil {
		return fail(err)
	}

	session := application.NewSessionStore()
	resources := application.NewResourcesWithLogger(client, logger)
	app := &App{
		Config:    cfg,
		Logger:    logger,
		Storage:   storage,
		Client:    client,
		Session:   session,
		Auth:      application.NewAuthServiceWithLogger(client, session, logger),
		Resources: resources,
		Guard:     application.NewGuardWithStore(session, returnPathAdapter{kv: storage}, logger),
		Refresher: application.NewRefresher(resources, application.RefresherOptions{
			Interval: cfg.PollInterval,
			Store:    snapshotStoreAdapter{repo: storage},
			Now:      now,
			Logger:   logger,
		}),
		Now:     now,
		logFile: logFile,
	}
	return app, nil
}

// Close stops background work and releases the state database.
func (a *App) Close() error {
	a.Refresher.Stop()
	err := a.Storage.Close()
	if a.logFile != nil {
		err = errors.Join(err, a.logFile.Close())
	}
	return err
}

type appFunc func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error

// withApp builds the App, resolves the session once and runs fn.
func withApp(fn appFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		app, err := newApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx = logging.ContextWithLogger(ctx, app.Logger.With("command", cmd.CommandPath()))
		app.Auth.CheckSession(ctx)
		return fn(ctx, app, cmd, args)
	}
}

// protected runs fn only when the route guard lets path render.
func protected(path string, fn appFunc) func(*cobra.Command, []string) error {
	return withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		decision, err := app.Guard.Await(ctx, path)
		if err != nil {
			return err
		}
		if decision.Outcome == application.Redirect {
			return &loginRequiredError{path: path}
		}
		return fn(ctx, app, cmd, args)
	})
}

// commandFor names the command that shows a console path.
func commandFor(path string) string {
	switch path {
	case application.PathCases:
		return "courtdesk cases list"
	case application.PathJudges:
		return "courtdesk judges list"
	case application.PathLawyers:
		return "courtdesk lawyers list"
	case application.PathSchedules:
		return "courtdesk schedules list"
	default:
		return "courtdesk dashboard"
	}
}
