package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fabrictrade/backend/internal/domain/identity"
	"github.com/fabrictrade/backend/internal/infrastructure/auth"
	"github.com/fabrictrade/backend/internal/infrastructure/config"
	"github.com/fabrictrade/backend/internal/infrastructure/logger"
	"github.com/fabrictrade/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "fabrictrade-test",
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, role identity.Role, customerID *uuid.UUID) (string, *auth.Claims) {
	t.Helper()
	tok, err := svc.GenerateAccessToken(auth.GenerateTokenInput{
		UserID:     uuid.New(),
		Username:   "tester",
		Role:       string(role),
		CustomerID: customerID,
	})
	require.NoError(t, err)
	claims, err := svc.ValidateAccessToken(tok.AccessToken)
	require.NoError(t, err)
	return tok.AccessToken, claims
}

type failingRevocations struct{}

func (failingRevocations) Revoke(context.Context, string, time.Duration) error {
	return errors.New("redis down")
}

func (failingRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func serveAuth(cfg AuthConfig, path, header string, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(RequestID(), AuthenticateWith(cfg))
	router.GET(path, handler)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set(AuthorizationHeader, header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestAuthenticate_ValidCustomerToken(t *testing.T) {
	svc := newTestJWTService()
	customerID := uuid.New()
	token, claims := issueToken(t, svc, identity.RoleCustomer, &customerID)

	w := serveAuth(DefaultAuthConfig(svc), "/api/v1/bills", BearerPrefix+token, func(c *gin.Context) {
		assert.Equal(t, claims.UserID, GetJWTUserID(c))
		assert.Equal(t, "customer", GetJWTRole(c))
		require.NotNil(t, GetJWTCustomerID(c))
		assert.Equal(t, customerID, *GetJWTCustomerID(c))
		assert.True(t, IsCustomer(c))
		assert.Equal(t, claims.UserID, logger.GetUserID(c.Request.Context()))
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticate_StaffHasNoCustomer(t *testing.T) {
	svc := newTestJWTService()
	token, _ := issueToken(t, svc, identity.RoleAccountant, nil)

	w := serveAuth(DefaultAuthConfig(svc), "/api/v1/payments", BearerPrefix+token, func(c *gin.Context) {
		assert.Nil(t, GetJWTCustomerID(c))
		assert.False(t, IsCustomer(c))
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticate_Rejections(t *testing.T) {
	svc := newTestJWTService()
	token, _ := issueToken(t, svc, identity.RoleAdmin, nil)

	past := time.Now().Add(-time.Hour)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    "fabrictrade-test",
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
		},
		UserID:    uuid.NewString(),
		Role:      "admin",
		TokenType: auth.TokenTypeAccess,
	}).SignedString([]byte("test-secret-key-at-least-32-chars"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", dto.ErrCodeTokenInvalid},
		{"not bearer", "Basic abc", dto.ErrCodeTokenInvalid},
		{"empty bearer", BearerPrefix, dto.ErrCodeTokenInvalid},
		{"garbage", BearerPrefix + "not.a.jwt", dto.ErrCodeTokenInvalid},
		{"tampered", BearerPrefix + token + "x", dto.ErrCodeTokenInvalid},
		{"expired", BearerPrefix + expired, dto.ErrCodeTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveAuth(DefaultAuthConfig(svc), "/api/v1/orders", tt.header, func(c *gin.Context) {
				t.Fatal("handler must not run")
			})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestAuthenticate_PublicPaths(t *testing.T) {
	svc := newTestJWTService()
	w := serveAuth(DefaultAuthConfig(svc), "/api/v1/auth/login", "", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticate_Revocations(t *testing.T) {
	svc := newTestJWTService()
	token, claims := issueToken(t, svc, identity.RoleAdmin, nil)

	t.Run("logged out token is revoked", func(t *testing.T) {
		bl := auth.NewMemoryRevocationList()
		require.NoError(t, bl.Revoke(context.Background(), claims.ID, time.Minute))

		cfg := DefaultAuthConfig(svc)
		cfg.Revocations = bl
		w := serveAuth(cfg, "/api/v1/auth/me", BearerPrefix+token, func(c *gin.Context) {
			t.Fatal("handler must not run")
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenRevoked, errorCode(t, w))
	})

	t.Run("revocation store outage fails open", func(t *testing.T) {
		cfg := DefaultAuthConfig(svc)
		cfg.Revocations = failingRevocations{}
		cfg.Logger = zap.NewNop()
		w := serveAuth(cfg, "/api/v1/auth/me", BearerPrefix+token, func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header, token, reason string
	}{
		{"", "", "missing authorization header"},
		{"Basic dXNlcjpwdw==", "", "not a bearer token"},
		{"Bearer    ", "", "empty bearer token"},
		{"Bearer abc.def.ghi ", "abc.def.ghi", ""},
	}
	for _, tt := range tests {
		token, reason := bearerToken(tt.header)
		assert.Equal(t, tt.token, token, tt.header)
		assert.Equal(t, tt.reason, reason, tt.header)
	}
}
