package application

import (
	"errors"
	"strings"
)

var (
	// ErrNotAuthenticated is returned when a protected operation runs without an authenticated session.
	ErrNotAuthenticated = errors.New("application: not authenticated")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrRefreshInFlight is returned when a refresh cycle is already outstanding.
	ErrRefreshInFlight = errors.New("application: refresh already in flight")
	// ErrRefresherStopped is returned when the refresher has been stopped.
	ErrRefresherStopped = errors.New("application: refresher stopped")
	// ErrRefresherPaused is returned while polling is paused for a signed out session.
	ErrRefresherPaused = errors.New("application: refresher paused")
)

const (
	defaultLoginMessage    = "Login failed"
	defaultRegisterMessage = "Registration failed"
)

// AuthError is a failed login or registration. Message is never empty.
type AuthError struct {
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Unwrap exposes the transport failure, if any.
func (e *AuthError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newAuthError(operation, fallback string, status int, message string, cause error) *AuthError {
	message = strings.TrimSpace(message)
	if message == "" {
		message = fallback
	}
	return &AuthError{Operation: operation, StatusCode: status, Message: message, Err: cause}
}
