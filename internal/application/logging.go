package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/courtdesk/internal/apiclient"
	"github.com/example/courtdesk/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps sentinel and transport errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return "unauthorized"
	case errors.Is(err, ErrNotFound), apiclient.IsNotFound(err):
		return "not_found"
	case errors.Is(err, ErrRefreshInFlight):
		return "in_flight"
	case errors.Is(err, ErrRefresherStopped):
		return "stopped"
	case errors.Is(err, ErrRefresherPaused):
		return "paused"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return "auth_failed"
	}
	var status *apiclient.StatusError
	if errors.As(err, &status) {
		return "status"
	}
	var transport *apiclient.TransportError
	if errors.As(err, &transport) {
		return "transport"
	}

	return "unexpected"
}
