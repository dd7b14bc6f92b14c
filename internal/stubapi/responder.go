package stubapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

const (
	detailNotFound         = "Not found."
	detailNotAuthenticated = "Authentication credentials were not provided."
	detailCSRFMissing      = "CSRF Failed: CSRF token missing."
	detailCSRFIncorrect    = "CSRF Failed: CSRF token incorrect."
	detailMalformed        = "JSON parse error."
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeDetail answers with the {"detail": "..."} body used for framework
// level failures.
func (r responder) writeDetail(ctx context.Context, w http.ResponseWriter, status int, detail string) {
	r.writeJSON(ctx, w, status, detailResponse{Detail: detail})
}

// writeAuthError answers with the {"error": "..."} body used by the auth views.
func (r responder) writeAuthError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	r.writeJSON(ctx, w, status, authErrorResponse{Error: message})
}

func (r responder) writeFieldErrors(ctx context.Context, w http.ResponseWriter, errs fieldErrors) {
	r.writeJSON(ctx, w, http.StatusBadRequest, errs)
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type detailResponse struct {
	Detail string `json:"detail"`
}

type authErrorResponse struct {
	Error string `json:"error"`
}
