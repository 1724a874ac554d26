package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fabrictrade/backend/internal/infrastructure/auth"
	"github.com/fabrictrade/backend/internal/infrastructure/config"
	"github.com/fabrictrade/backend/internal/interfaces/http/handler"
	"github.com/fabrictrade/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	mounted := r.Register(group).Setup()
	assert.Equal(t, []RouteInfo{{Group: "test", Method: http.MethodGet, Path: "/api/v1/test/ping"}}, mounted)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("catalog", "/catalog")
		assert.Equal(t, "catalog", g.Name())
		assert.Equal(t, "/catalog", g.Prefix())
	})

	t.Run("methods, middleware and subgroups", func(t *testing.T) {
		engine := gin.New()
		ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method+" "+c.GetString("tag")) }

		g := NewDomainGroup("test", "/test").Use(func(c *gin.Context) {
			c.Set("tag", "tagged")
			c.Next()
		})
		g.GET("", ok).POST("", ok).PUT("/:id", ok).DELETE("/:id", ok)
		g.Group("sub", "/sub").GET("/leaf", ok)
		g.RegisterRoutes(engine.Group("/api/v1"))

		cases := []struct{ method, path, body string }{
			{http.MethodGet, "/api/v1/test", "GET tagged"},
			{http.MethodPost, "/api/v1/test", "POST tagged"},
			{http.MethodPut, "/api/v1/test/1", "PUT tagged"},
			{http.MethodDelete, "/api/v1/test/1", "DELETE tagged"},
			{http.MethodGet, "/api/v1/test/sub/leaf", "GET tagged"},
		}
		for _, tc := range cases {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, http.StatusOK, w.Code, tc.path)
			assert.Equal(t, tc.body, w.Body.String())
		}
	})
}

// apiEngine mounts the API behind the JWT middleware. Services are left nil:
// only requests stopped by a role guard are sent through it.
func nilHandlers() Handlers {
	return Handlers{
		Auth:           handler.NewAuthHandler(nil),
		Product:        handler.NewProductHandler(nil),
		Customer:       handler.NewCustomerHandler(nil),
		Order:          handler.NewOrderHandler(nil),
		Bill:           handler.NewBillHandler(nil, nil),
		Payment:        handler.NewPaymentHandler(nil),
		PaymentRequest: handler.NewPaymentRequestHandler(nil),
		Analytics:      handler.NewAnalyticsHandler(nil),
		Assistant:      handler.NewAssistantHandler(nil),
		System:         handler.NewSystemHandler("test", nil),
	}
}

func apiEngine(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "router-test-secret-32-characters!",
		AccessTokenExpiration: time.Hour,
		Issuer:                "test",
	})

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Authenticate(jwtService))
	NewRouter(engine).Register(APIGroups(nilHandlers(), nil)...).Setup()
	return engine, jwtService
}

func bearer(t *testing.T, svc *auth.JWTService, role string) string {
	t.Helper()
	in := auth.GenerateTokenInput{UserID: uuid.New(), Username: "tester", Role: role}
	if role == "customer" {
		id := uuid.New()
		in.CustomerID = &id
	}
	token, err := svc.GenerateAccessToken(in)
	require.NoError(t, err)
	return "Bearer " + token.AccessToken
}

func TestAPIGroups_RoleGuards(t *testing.T) {
	engine, jwtService := apiEngine(t)

	forbidden := []struct {
		role   string
		method string
		path   string
	}{
		{"customer", http.MethodPost, "/api/v1/payments"},
		{"admin", http.MethodPost, "/api/v1/payments"},
		{"customer", http.MethodPost, "/api/v1/bills"},
		{"customer", http.MethodPost, "/api/v1/payment-requests/" + uuid.NewString() + "/approve"},
		{"admin", http.MethodPost, "/api/v1/payment-requests/" + uuid.NewString() + "/reject"},
		{"accountant", http.MethodPost, "/api/v1/payment-requests"},
		{"customer", http.MethodGet, "/api/v1/customers"},
		{"customer", http.MethodGet, "/api/v1/analytics/aging"},
		{"accountant", http.MethodPost, "/api/v1/catalog/products"},
		{"accountant", http.MethodPost, "/api/v1/orders"},
		{"customer", http.MethodPut, "/api/v1/orders/" + uuid.NewString() + "/status"},
		{"accountant", http.MethodPost, "/api/v1/users"},
	}
	for _, tc := range forbidden {
		t.Run(tc.role+" "+tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			req.Header.Set("Authorization", bearer(t, jwtService, tc.role))
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}

func TestAPIGroups_RequiresToken(t *testing.T) {
	engine, _ := apiEngine(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/bills", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIGroups_RouteInventoryMatchesEngine(t *testing.T) {
	engine := gin.New()
	mounted := NewRouter(engine).Register(APIGroups(nilHandlers(), nil)...).Setup()

	require.Len(t, mounted, len(engine.Routes()))
	inEngine := map[string]bool{}
	for _, r := range engine.Routes() {
		inEngine[r.Method+" "+r.Path] = true
	}
	for _, r := range mounted {
		assert.True(t, inEngine[r.Method+" "+r.Path], "%s %s (%s)", r.Method, r.Path, r.Group)
	}
}

func TestAPIGroups_RegistersEveryRoute(t *testing.T) {
	engine, _ := apiEngine(t)

	registered := map[string]bool{}
	for _, r := range engine.Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"POST /api/v1/auth/login",
		"PUT /api/v1/auth/password",
		"POST /api/v1/catalog/products/:id/stock",
		"GET /api/v1/customers/:id/outstanding",
		"PUT /api/v1/customers/:id/credit-limit",
		"PUT /api/v1/orders/:id/status",
		"GET /api/v1/bills/:id/invoice/pdf",
		"POST /api/v1/payments",
		"POST /api/v1/payment-requests/:id/approve",
		"GET /api/v1/analytics/sales",
		"POST /api/v1/assistant/chat",
	} {
		assert.True(t, registered[want], want)
	}
}
