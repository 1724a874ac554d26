package middleware

import (
	"net/http"
	"slices"

	"github.com/fabrictrade/backend/internal/domain/identity"
	"github.com/fabrictrade/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoleConfig holds configuration for role middleware
type RoleConfig struct {
	Logger *zap.Logger
}

// RequireRole lets the request through only when the caller holds one of roles
func RequireRole(roles ...identity.Role) gin.HandlerFunc {
	return RequireRoleWithConfig(RoleConfig{}, roles...)
}

// RequireStaff admits admins and accountants
func RequireStaff() gin.HandlerFunc {
	return RequireRole(identity.RoleAdmin, identity.RoleAccountant)
}

// RequireRoleWithConfig is RequireRole with logging
func RequireRoleWithConfig(cfg RoleConfig, roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required", c.GetString(RequestIDKey)))
			return
		}

		if !slices.Contains(roles, identity.Role(claims.Role)) {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Role check failed",
					zap.String("user_id", claims.UserID),
					zap.String("role", claims.Role),
					zap.String("path", c.FullPath()),
				)
			}
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "You do not have access to this resource", c.GetString(RequestIDKey)))
			return
		}

		c.Next()
	}
}

// IsCustomer reports whether the authenticated caller is a customer account
func IsCustomer(c *gin.Context) bool {
	return GetJWTRole(c) == string(identity.RoleCustomer)
}
