package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rescue-chip/core/internal/pkg/ratelimit"
	"github.com/rescue-chip/core/internal/pkg/response"
)

// RateLimitByIP returns a middleware enforcing the given limiter keyed by
// client IP. Requests without a resolvable IP pass through.
func RateLimitByIP(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}
		if !limiter.Allow(c.Request.Context(), ip) {
			response.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
