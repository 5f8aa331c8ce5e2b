package domain

import (
	"errors"
	"fmt"
)

// Machine-readable error codes returned to callers. Protocol-integrity
// failures (token exchange validation, PKCE checks) always surface one of
// these exact codes; they are never up-leveled to a generic error.
const (
	CodeInvalidClient        = "invalid_client"
	CodeInvalidRedirectURIs  = "invalid_redirect_uris"
	CodeInvalidRedirectURI   = "invalid_redirect_uri"
	CodeInvalidCode          = "invalid_code"
	CodeInvalidOrExpiredCode = "invalid_or_expired_code"
	CodeCodeExpired          = "code_expired"
	CodeUserNotBound         = "user_not_bound"
	CodeInvalidCodeVerifier  = "invalid_code_verifier"
	CodeMissingCodeVerifier  = "missing_code_verifier"
	CodeInvalidPlatform      = "invalid_platform"
	CodeInvalidSession       = "invalid_session"
	CodeSessionNotFound      = "session_not_found"
	CodePlatformNotLinked    = "platform_not_linked_or_inactive"
	CodePlatformAuthExpired  = "platform_auth_expired"
	CodePlatformAPIError     = "platform_api_error"
	CodeInvalidCredentials   = "invalid_credentials"
	CodeAuthenticationFailed = "authentication_failed"
	CodeUnauthorized         = "unauthorized"
	CodeInternalError        = "internal_error"
)

// AuthError carries one of the taxonomy codes above plus a human-readable
// message.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAuthError builds an AuthError with a formatted message.
func NewAuthError(code, format string, args ...any) *AuthError {
	return &AuthError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsAuthError extracts an AuthError from an error chain.
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// ErrorCode returns the taxonomy code for err, or internal_error when the
// error did not originate from the taxonomy.
func ErrorCode(err error) string {
	if ae, ok := AsAuthError(err); ok {
		return ae.Code
	}
	return CodeInternalError
}
