package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
	"github.com/luxbridge-ai/luxbridge-auth/internal/dto"
)

// statusFor maps a taxonomy code to its HTTP status.
func statusFor(code string) int {
	switch code {
	case domain.CodeInvalidClient,
		domain.CodeInvalidRedirectURIs,
		domain.CodeInvalidRedirectURI,
		domain.CodeInvalidCode,
		domain.CodeInvalidOrExpiredCode,
		domain.CodeCodeExpired,
		domain.CodeUserNotBound,
		domain.CodeInvalidCodeVerifier,
		domain.CodeMissingCodeVerifier,
		domain.CodeInvalidPlatform:
		return http.StatusBadRequest
	case domain.CodeInvalidSession,
		domain.CodeInvalidCredentials,
		domain.CodeUnauthorized,
		domain.CodePlatformAuthExpired:
		return http.StatusUnauthorized
	case domain.CodeSessionNotFound:
		return http.StatusNotFound
	case domain.CodePlatformNotLinked:
		return http.StatusBadRequest
	case domain.CodePlatformAPIError:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError writes the taxonomy error body for err. Anything that is not
// a taxonomy error is downgraded to internal_error without leaking its
// message.
func respondError(c *gin.Context, err error) {
	if ae, ok := domain.AsAuthError(err); ok {
		c.JSON(statusFor(ae.Code), dto.ErrorResponse{
			Error:   ae.Code,
			Message: ae.Message,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error:   domain.CodeInternalError,
		Message: "internal error",
	})
}
