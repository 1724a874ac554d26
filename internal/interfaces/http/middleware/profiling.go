package middleware

import (
	"context"

	"github.com/fabrictrade/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling tags CPU and allocation samples taken while a request runs with its
// route, method and caller role, so profiles can be sliced per endpoint.
// Must run after the JWT middleware for the role label to be set.
func Profiling(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if !enabled || route == "" || route == "/health" || route == "/api/v1/health" {
			c.Next()
			return
		}

		role := GetJWTRole(c)
		if role == "" {
			role = "anonymous"
		}
		telemetry.Labeled(c.Request.Context(), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		}, "route", route, "method", c.Request.Method, "role", role)
	}
}
