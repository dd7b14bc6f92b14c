package stubapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

type AuthHandler struct {
	store     *Store
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(store *Store, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{store: store, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// Check reports the session state and makes sure the client holds a CSRF
// cookie for its next unsafe request.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(CSRFCookieName); err != nil || cookie.Value == "" {
		setCSRFCookie(w, newToken())
	}

	user, ok := UserFromContext(r.Context())
	if !ok {
		h.responder.writeJSON(r.Context(), w, http.StatusOK, checkResponse{IsAuthenticated: false})
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, checkResponse{IsAuthenticated: true, User: &user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Login", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode login request", "error", err)
		h.responder.writeAuthError(r.Context(), w, http.StatusBadRequest, "Invalid request body")
		return
	}

	logger := h.log(r.Context(), "Login", "username", strings.TrimSpace(req.Username))
	user, err := h.store.Authenticate(req.Username, req.Password)
	if err != nil {
		logger.WarnContext(r.Context(), "authentication rejected", "error", err, "error_kind", "auth_failed")
		h.responder.writeAuthError(r.Context(), w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	h.startSession(w, r, user)
	logger.InfoContext(r.Context(), "user authenticated", "user_id", user.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, userResponse{User: user})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		h.log(r.Context(), "Register", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode register request", "error", err)
		h.responder.writeAuthError(r.Context(), w, http.StatusBadRequest, "Invalid request body")
		return
	}

	username := stringField(fields, "username")
	logger := h.log(r.Context(), "Register", "username", username)

	profile := make(map[string]string)
	for key := range fields {
		switch key {
		case "username", "email", "password":
			continue
		}
		if value := stringField(fields, key); value != "" {
			profile[key] = value
		}
	}

	password, _ := fields["password"].(string)
	user, err := h.store.Register(username, stringField(fields, "email"), password, profile)
	switch {
	case errors.Is(err, ErrMissingFields):
		logger.WarnContext(r.Context(), "registration rejected", "error", err, "error_kind", "bad_request")
		h.responder.writeAuthError(r.Context(), w, http.StatusBadRequest, "Username, email and password are required")
		return
	case errors.Is(err, ErrUsernameTaken):
		logger.WarnContext(r.Context(), "registration rejected", "error", err, "error_kind", "conflict")
		h.responder.writeAuthError(r.Context(), w, http.StatusBadRequest, "Username already exists")
		return
	case err != nil:
		logger.ErrorContext(r.Context(), "registration failed", "error", err, "error_kind", "unexpected")
		h.responder.writeAuthError(r.Context(), w, http.StatusInternalServerError, "Registration failed")
		return
	}

	h.startSession(w, r, user)
	logger.InfoContext(r.Context(), "user registered", "user_id", user.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, userResponse{User: user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		h.store.CloseSession(cookie.Value)
	}
	clearSessionCookie(w)
	h.log(r.Context(), "Logout").InfoContext(r.Context(), "session closed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// startSession opens a session and rotates the CSRF token, as Django does on
// login.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user UserRecord) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		h.store.CloseSession(cookie.Value)
	}
	setSessionCookie(w, h.store.OpenSession(user))
	setCSRFCookie(w, newToken())
}

func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64, bool:
		b, _ := json.Marshal(v)
		return string(b)
	default:
		return ""
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type checkResponse struct {
	IsAuthenticated bool        `json:"isAuthenticated"`
	User            *UserRecord `json:"user,omitempty"`
}

type userResponse struct {
	User UserRecord `json:"user"`
}
