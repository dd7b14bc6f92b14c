package stubapi

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	loggerContextKey contextKey = "logger"
	userContextKey   contextKey = "user"
)

// ContextWithLogger returns a derived context carrying the request logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// LoggerFromContext extracts the request logger if one was attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger, _ := ctx.Value(loggerContextKey).(*slog.Logger)
	return logger
}

func contextWithUser(ctx context.Context, user UserRecord) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the user bound to the request's session.
func UserFromContext(ctx context.Context) (UserRecord, bool) {
	user, ok := ctx.Value(userContextKey).(UserRecord)
	return user, ok
}
