package claude

import (
	"errors"
	"fmt"
	"net/http"
)

// AuthenticationError represents authentication-related errors raised by the
// OAuth flow and token lifecycle.
type AuthenticationError struct {
	// Type is the machine-readable kind of authentication error.
	Type string `json:"type"`
	// Message is a human-readable message describing the error.
	Message string `json:"message"`
	// Code is the HTTP status code (or special exit code) associated with the error.
	Code int `json:"code"`
	// Cause is the underlying error that caused this authentication error.
	Cause error `json:"-"`
}

// Error returns a string representation of the authentication error.
func (e *AuthenticationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/errors.As chains.
func (e *AuthenticationError) Unwrap() error { return e.Cause }

// Common authentication error types.
var (
	// ErrInvalidVerifier represents an error for a missing or empty PKCE verifier.
	ErrInvalidVerifier = &AuthenticationError{
		Type:    "invalid_argument",
		Message: "PKCE code verifier is empty",
		Code:    http.StatusBadRequest,
	}

	// ErrFlowNotStarted is returned when code exchange runs without a pending
	// flow and without an explicitly supplied verifier.
	ErrFlowNotStarted = &AuthenticationError{
		Type:    "flow_not_started",
		Message: "No code verifier found; start the OAuth flow first",
		Code:    http.StatusBadRequest,
	}

	// ErrNotAuthenticated is returned when no credentials are stored.
	ErrNotAuthenticated = &AuthenticationError{
		Type:    "not_authenticated",
		Message: "Not authenticated; run login first",
		Code:    http.StatusUnauthorized,
	}

	// ErrCodeExchangeFailed represents a failed authorization code exchange.
	ErrCodeExchangeFailed = &AuthenticationError{
		Type:    "token_exchange_failed",
		Message: "Failed to exchange authorization code for tokens",
		Code:    http.StatusBadRequest,
	}

	// ErrTokenRefreshFailed represents a failed refresh-token grant.
	ErrTokenRefreshFailed = &AuthenticationError{
		Type:    "token_refresh_failed",
		Message: "Failed to refresh access token",
		Code:    http.StatusUnauthorized,
	}

	// ErrServerStartFailed represents an error when starting the OAuth callback server fails.
	ErrServerStartFailed = &AuthenticationError{
		Type:    "server_start_failed",
		Message: "Failed to start OAuth callback server",
		Code:    http.StatusInternalServerError,
	}

	// ErrPortInUse represents an error when the OAuth callback port is already in use.
	ErrPortInUse = &AuthenticationError{
		Type:    "port_in_use",
		Message: "OAuth callback port is already in use",
		Code:    13, // Special exit code for port-in-use
	}

	// ErrCallbackTimeout represents an error when waiting for the OAuth callback times out.
	ErrCallbackTimeout = &AuthenticationError{
		Type:    "callback_timeout",
		Message: "Timeout waiting for OAuth callback",
		Code:    http.StatusRequestTimeout,
	}
)

// NewAuthenticationError creates a new authentication error with a cause based on a base error.
func NewAuthenticationError(baseErr *AuthenticationError, cause error) *AuthenticationError {
	return &AuthenticationError{
		Type:    baseErr.Type,
		Message: baseErr.Message,
		Code:    baseErr.Code,
		Cause:   cause,
	}
}

// NewUpstreamError creates an authentication error carrying the upstream HTTP
// status code and response body verbatim, as returned by the token endpoint.
func NewUpstreamError(baseErr *AuthenticationError, statusCode int, body string) *AuthenticationError {
	return &AuthenticationError{
		Type:    baseErr.Type,
		Message: fmt.Sprintf("%s: status %d: %s", baseErr.Message, statusCode, body),
		Code:    statusCode,
	}
}

// IsAuthenticationError checks if an error is an authentication error.
func IsAuthenticationError(err error) bool {
	var authenticationError *AuthenticationError
	return errors.As(err, &authenticationError)
}

// IsAuthenticationErrorType reports whether err is an authentication error of
// the same type as base.
func IsAuthenticationErrorType(err error, base *AuthenticationError) bool {
	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		return false
	}
	return authErr.Type == base.Type
}

// GetUserFriendlyMessage returns a user-friendly error message based on the error type.
func GetUserFriendlyMessage(err error) string {
	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		return "An unexpected error occurred. Please try again."
	}
	switch authErr.Type {
	case "not_authenticated":
		return "Please log in to continue."
	case "flow_not_started":
		return "The login flow was not started. Please run login again."
	case "token_exchange_failed":
		return "Authentication failed during code exchange. Please try again."
	case "token_refresh_failed":
		return "Your authentication has expired. Please log in again."
	case "port_in_use":
		return fmt.Sprintf("The required port is already in use. Please close any applications using port %d and try again.", DefaultCallbackPort)
	case "callback_timeout":
		return "Authentication timed out. Please try again."
	default:
		return "Authentication failed. Please try again."
	}
}
