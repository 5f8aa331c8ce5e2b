package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
	"github.com/luxbridge-ai/luxbridge-auth/internal/dto"
	"github.com/luxbridge-ai/luxbridge-auth/internal/service"
)

// Context keys set by AuthMiddleware.
const (
	ctxIdentityID = "identity_id"
	ctxClientID   = "client_id"
	ctxSessionID  = "session_id"
)

// AuthMiddleware validates the Bearer access token and adds the resolved
// identity to the request context
func AuthMiddleware(oauthService service.OAuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   domain.CodeUnauthorized,
				Message: "Authorization header is required",
			})
			c.Abort()
			return
		}

		bearer, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || bearer == "" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   domain.CodeUnauthorized,
				Message: "invalid authorization header format",
			})
			c.Abort()
			return
		}

		record, err := oauthService.Authenticate(c.Request.Context(), bearer)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   domain.CodeUnauthorized,
				Message: "invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(ctxIdentityID, record.UserID)
		c.Set(ctxClientID, record.ClientID)
		c.Set(ctxSessionID, record.SessionID)

		c.Next()
	}
}
