package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/luxbridge-ai/luxbridge-auth/internal/dto"
	"github.com/luxbridge-ai/luxbridge-auth/internal/service"
)

// RateLimitMiddleware creates a rate limiting middleware
func RateLimitMiddleware(rateLimiter *service.RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rateLimiter.Allow(c.Request.Context(), keyFunc(c)) {
			c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error:   "rate_limit_exceeded",
				Message: "too many requests, slow down",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// IPBasedKey extracts a rate limit key from the client IP
func IPBasedKey(c *gin.Context) string {
	ip := c.GetHeader("X-Forwarded-For")
	if ip != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		ips := strings.Split(ip, ",")
		return strings.TrimSpace(ips[0])
	}
	return c.ClientIP()
}
