package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_Health(t *testing.T) {
	ok := func(context.Context) error { return nil }

	t.Run("all checks pass", func(t *testing.T) {
		h := NewSystemHandler("1.2.0", map[string]HealthCheck{"database": ok, "redis": ok})
		c, w := newTestContext(t, http.MethodGet, "/health", nil, caller{})
		h.Health(c)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decode(t, w).Data.(map[string]any)
		assert.Equal(t, "ok", data["status"])
	})

	t.Run("failing dependency degrades", func(t *testing.T) {
		h := NewSystemHandler("1.2.0", map[string]HealthCheck{
			"database": ok,
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		})
		c, w := newTestContext(t, http.MethodGet, "/health", nil, caller{})
		h.Health(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		data := decode(t, w).Data.(map[string]any)
		assert.Equal(t, "degraded", data["status"])
		checks := data["checks"].(map[string]any)
		assert.Equal(t, "ok", checks["database"])
		assert.Equal(t, "connection refused", checks["redis"])
	})
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("1.2.0", nil)
	c, w := newTestContext(t, http.MethodGet, "/api/v1/system/info", nil, staff("admin"))
	h.GetSystemInfo(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]any)
	assert.Equal(t, "Fabric Trade API", data["name"])
	assert.Equal(t, "1.2.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
}
