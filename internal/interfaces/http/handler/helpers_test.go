package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/fabrictrade/backend/internal/domain/identity"
	"github.com/fabrictrade/backend/internal/infrastructure/auth"
	"github.com/fabrictrade/backend/internal/interfaces/http/dto"
	"github.com/fabrictrade/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// caller is the authenticated identity a test request runs as
type caller struct {
	userID     uuid.UUID
	role       identity.Role
	customerID *uuid.UUID
}

func staff(role identity.Role) caller {
	return caller{userID: uuid.New(), role: role}
}

func customer(id uuid.UUID) caller {
	return caller{userID: uuid.New(), role: identity.RoleCustomer, customerID: &id}
}

// newTestContext builds a gin context as the JWT middleware would leave it
func newTestContext(t *testing.T, method, target string, body any, who caller) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.RequestIDKey, "req-test")

	if who.role != "" {
		claims := &auth.Claims{UserID: who.userID.String(), Role: string(who.role)}
		if who.customerID != nil {
			claims.CustomerID = who.customerID.String()
		}
		middleware.SetClaims(c, claims)
	}
	return c, w
}

func withID(c *gin.Context, id uuid.UUID) {
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decode(t, w)
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}
