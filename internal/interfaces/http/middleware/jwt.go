package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/fabrictrade/backend/internal/infrastructure/auth"
	"github.com/fabrictrade/backend/internal/infrastructure/logger"
	"github.com/fabrictrade/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "

	claimsKey = "auth_claims"
)

// AuthConfig configures Authenticate
type AuthConfig struct {
	Tokens *auth.JWTService
	// Revocations rejects logged out tokens when set
	Revocations auth.RevocationList
	// Public paths are served without a token
	Public         []string
	PublicPrefixes []string
	Logger         *zap.Logger
}

// DefaultAuthConfig leaves login, health and the API docs public
func DefaultAuthConfig(tokens *auth.JWTService) AuthConfig {
	return AuthConfig{
		Tokens:         tokens,
		Public:         []string{"/health", "/api/v1/health", "/api/v1/auth/login"},
		PublicPrefixes: []string{"/swagger"},
		Logger:         zap.NewNop(),
	}
}

func (cfg AuthConfig) isPublic(path string) bool {
	if slices.Contains(cfg.Public, path) {
		return true
	}
	return slices.ContainsFunc(cfg.PublicPrefixes, func(p string) bool { return strings.HasPrefix(path, p) })
}

// Authenticate is AuthenticateWith(DefaultAuthConfig(tokens))
func Authenticate(tokens *auth.JWTService) gin.HandlerFunc {
	return AuthenticateWith(DefaultAuthConfig(tokens))
}

// AuthenticateWith requires a valid, unrevoked bearer access token on every
// non-public path and stores its claims on the context.
func AuthenticateWith(cfg AuthConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if cfg.isPublic(c.Request.URL.Path) {
			c.Next()
			return
		}

		raw, reason := bearerToken(c.GetHeader(AuthorizationHeader))
		if reason != "" {
			refuse(c, cfg.Logger, auth.ErrInvalidToken, reason)
			return
		}
		claims, err := cfg.Tokens.ValidateAccessToken(raw)
		if err != nil {
			refuse(c, cfg.Logger, err, "validation failed")
			return
		}
		if revoked(c, cfg, claims) {
			refuse(c, cfg.Logger, auth.ErrTokenRevoked, "token revoked")
			return
		}

		SetClaims(c, claims)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// bearerToken returns the token of an Authorization header, or why there is none
func bearerToken(header string) (token, reason string) {
	switch {
	case header == "":
		return "", "missing authorization header"
	case !strings.HasPrefix(header, BearerPrefix):
		return "", "not a bearer token"
	}
	token = strings.TrimSpace(header[len(BearerPrefix):])
	if token == "" {
		return "", "empty bearer token"
	}
	return token, ""
}

// revoked fails open: when the revocation store is down the token is accepted
func revoked(c *gin.Context, cfg AuthConfig, claims *auth.Claims) bool {
	if cfg.Revocations == nil || claims.ID == "" {
		return false
	}
	yes, err := cfg.Revocations.IsRevoked(c.Request.Context(), claims.ID)
	if err != nil {
		cfg.Logger.Error("Revocation check failed, accepting token", zap.String("jti", claims.ID), zap.Error(err))
		return false
	}
	return yes
}

// refuse aborts with 401. The code tells clients whether refreshing can help.
func refuse(c *gin.Context, log *zap.Logger, err error, reason string) {
	log.Warn("Authentication refused",
		zap.String("reason", reason),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))

	code, msg := dto.ErrCodeTokenInvalid, "Invalid token"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		code, msg = dto.ErrCodeTokenRevoked, "Token has been revoked"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, msg, c.GetString(RequestIDKey)))
}

// SetClaims stores the caller's claims on the context
func SetClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(claimsKey, claims)
}

// GetJWTClaims returns the caller's claims, nil on public paths
func GetJWTClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func GetJWTUserID(c *gin.Context) string {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.UserID
	}
	return ""
}

func GetJWTRole(c *gin.Context) string {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.Role
	}
	return ""
}

// GetJWTCustomerID returns the customer a customer account acts for, nil for staff
func GetJWTCustomerID(c *gin.Context) *uuid.UUID {
	claims := GetJWTClaims(c)
	if claims == nil || claims.CustomerID == "" {
		return nil
	}
	id, err := uuid.Parse(claims.CustomerID)
	if err != nil {
		return nil
	}
	return &id
}
