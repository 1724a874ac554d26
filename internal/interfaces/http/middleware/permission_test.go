package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fabrictrade/backend/internal/domain/identity"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRequireRole(t *testing.T) {
	svc := newTestJWTService()

	newRouter := func(guard gin.HandlerFunc) *gin.Engine {
		router := gin.New()
		router.Use(RequestID(), Authenticate(svc))
		router.POST("/api/v1/payments", guard, func(c *gin.Context) {
			c.Status(http.StatusCreated)
		})
		return router
	}

	post := func(router *gin.Engine, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", nil)
		if token != "" {
			req.Header.Set(AuthorizationHeader, BearerPrefix+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	accountant, _ := issueToken(t, svc, identity.RoleAccountant, nil)
	admin, _ := issueToken(t, svc, identity.RoleAdmin, nil)
	customer, _ := issueToken(t, svc, identity.RoleCustomer, nil)

	t.Run("accountant allowed", func(t *testing.T) {
		w := post(newRouter(RequireRole(identity.RoleAccountant)), accountant)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("admin refused for accountant-only route", func(t *testing.T) {
		w := post(newRouter(RequireRoleWithConfig(RoleConfig{Logger: zap.NewNop()}, identity.RoleAccountant)), admin)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", errorCode(t, w))
	})

	t.Run("staff guard", func(t *testing.T) {
		router := newRouter(RequireStaff())
		assert.Equal(t, http.StatusCreated, post(router, admin).Code)
		assert.Equal(t, http.StatusForbidden, post(router, customer).Code)
	})

	t.Run("no claims", func(t *testing.T) {
		router := gin.New()
		router.GET("/x", RequireStaff(), func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
