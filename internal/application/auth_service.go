package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/courtdesk/internal/apiclient"
)

// Auth endpoint paths relative to the backend base URL.
const (
	PathAuthCheck    = "/auth/check/"
	PathAuthLogin    = "/auth/login/"
	PathAuthRegister = "/auth/register/"
	PathAuthLogout   = "/auth/logout/"
)

// Transport issues JSON requests against the backend.
type Transport interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// SessionForgetter drops locally held session credentials.
type SessionForgetter interface {
	ForgetSession()
}

// RegisterParams carries the registration form. Profile holds optional extra
// fields such as city or phone_number.
type RegisterParams struct {
	Username string
	Email    string
	Password string
	Profile  map[string]string
}

type sessionCheckResponse struct {
	IsAuthenticated bool  `json:"isAuthenticated"`
	User            *User `json:"user"`
}

type userResponse struct {
	User *User `json:"user"`
}

// AuthService performs the auth request/response contracts and is the only
// writer of the SessionStore.
type AuthService struct {
	transport Transport
	session   *SessionStore
	logger    *slog.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(transport Transport, session *SessionStore) *AuthService {
	return NewAuthServiceWithLogger(transport, session, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(transport Transport, session *SessionStore, logger *slog.Logger) *AuthService {
	if session == nil {
		session = NewSessionStore()
	}
	return &AuthService{
		transport: transport,
		session:   session,
		logger:    defaultLogger(logger),
	}
}

// Session returns the store this service writes to.
func (s *AuthService) Session() *SessionStore {
	return s.session
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// CheckSession asks the backend whether the current cookies carry a session.
// Failures are treated as anonymous; the loading flag is always cleared.
func (s *AuthService) CheckSession(ctx context.Context) SessionState {
	logger := s.loggerWith(ctx, "CheckSession")

	var resp sessionCheckResponse
	err := s.transport.Do(ctx, http.MethodGet, PathAuthCheck, nil, &resp)
	if err != nil {
		logger.WarnContext(ctx, "session check failed, treating as anonymous", "error", err, "error_kind", ErrorKind(err))
		s.session.resolve(nil)
		return s.session.State()
	}

	if !resp.IsAuthenticated {
		s.session.resolve(nil)
		logger.InfoContext(ctx, "session anonymous")
		return s.session.State()
	}

	user := resp.User
	if user == nil {
		// The flag decides; the identity stays empty until the next check.
		logger.WarnContext(ctx, "session check reported isAuthenticated without a user record")
		user = &User{}
	}
	s.session.resolve(user)
	logger.InfoContext(ctx, "session authenticated", "user_id", user.ID, "username", user.Username)
	return s.session.State()
}

// Login posts credentials. On failure the identity is left unchanged and the
// returned *AuthError carries the backend message or "Login failed".
func (s *AuthService) Login(ctx context.Context, username, password string) (user User, err error) {
	username = strings.TrimSpace(username)
	logger := s.loggerWith(ctx, "Login", "username", username)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "login succeeded", "user_id", user.ID)
	}()

	body := map[string]string{"username": username, "password": password}
	user, err = s.authenticate(ctx, "login", PathAuthLogin, body, defaultLoginMessage)
	return
}

// Register creates an account; success authenticates like Login does.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (user User, err error) {
	username := strings.TrimSpace(params.Username)
	email := strings.TrimSpace(params.Email)
	logger := s.loggerWith(ctx, "Register", "username", username)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "registration succeeded", "user_id", user.ID)
	}()

	body := make(map[string]string, len(params.Profile)+3)
	for key, value := range params.Profile {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		body[key] = value
	}
	body["username"] = username
	body["email"] = email
	body["password"] = params.Password

	user, err = s.authenticate(ctx, "register", PathAuthRegister, body, defaultRegisterMessage)
	return
}

func (s *AuthService) authenticate(ctx context.Context, operation, path string, body any, fallback string) (User, error) {
	var resp userResponse
	if err := s.transport.Do(ctx, http.MethodPost, path, body, &resp); err != nil {
		status := 0
		var statusErr *apiclient.StatusError
		if errors.As(err, &statusErr) {
			status = statusErr.StatusCode
		}
		return User{}, newAuthError(operation, fallback, status, apiclient.PayloadMessage(err), err)
	}
	if resp.User == nil {
		return User{}, newAuthError(operation, fallback, 0, "", fmt.Errorf("%s response carried no user", operation))
	}

	s.session.setIdentity(resp.User)
	return *resp.User, nil
}

// Logout posts to the logout endpoint and then clears the identity whatever
// the outcome. The transport error, if any, is returned for reporting only.
func (s *AuthService) Logout(ctx context.Context) (err error) {
	logger := s.loggerWith(ctx, "Logout")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "logout request failed, identity cleared", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "logged out")
	}()

	err = s.transport.Do(ctx, http.MethodPost, PathAuthLogout, nil, nil)

	s.session.setIdentity(nil)
	if forgetter, ok := s.transport.(SessionForgetter); ok {
		forgetter.ForgetSession()
	}
	return err
}
