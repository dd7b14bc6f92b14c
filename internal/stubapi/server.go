package stubapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Options configures a stub backend.
type Options struct {
	Logger *slog.Logger
	Now    func() time.Time
	// Location is the zone schedule timestamps are rendered in.
	Location *time.Location
	// RequireAuth rejects resource and regenerate requests without a session.
	RequireAuth bool
	// PasswordParams defaults to DefaultArgon2idParams.
	PasswordParams *Argon2idParams
}

// Server is a ready to mount stub backend.
type Server struct {
	store   *Store
	handler http.Handler
	logger  *slog.Logger
}

func New(opts Options) *Server {
	logger := defaultLogger(opts.Logger)
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	params := DefaultArgon2idParams
	if opts.PasswordParams != nil {
		params = *opts.PasswordParams
	}
	store := NewStore(params, opts.Now)

	cfg := RouterConfig{
		Auth:       NewAuthHandler(store, logger),
		Cases:      newCollectionHandler(casesCollection, store, loc, logger),
		Judges:     newCollectionHandler(judgesCollection, store, loc, logger),
		Lawyers:    newCollectionHandler(lawyersCollection, store, loc, logger),
		Schedules:  newCollectionHandler(schedulesCollection, store, loc, logger),
		Regenerate: NewRegenerateHandler(store, loc, logger),
		Middleware: []func(http.Handler) http.Handler{
			RequestLogger(logger),
			LoadSession(store),
			EnforceCSRF(logger),
		},
	}
	if opts.RequireAuth {
		cfg.Protect = RequireSession(logger)
	}

	return &Server{store: store, handler: NewRouter(cfg), logger: logger}
}

// Store exposes the backing store for seeding and inspection.
func (s *Server) Store() *Store {
	return s.store
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully. ready, when non-nil, receives the bound address.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("failed to shutdown stub server", "error", err)
		}
	}()

	s.logger.Info("stub backend listening", "addr", listener.Addr().String())
	if ready != nil {
		ready(listener.Addr())
	}
	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
