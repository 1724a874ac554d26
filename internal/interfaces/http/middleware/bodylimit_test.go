package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func bodyLimitRouter(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	SetupValidator()
	router := gin.New()
	router.Use(RequestID(), BodyLimit(limit))
	router.POST("/payments", func(c *gin.Context) {
		var in struct {
			Notes string `json:"notes"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})
	return router
}

func TestBodyLimit(t *testing.T) {
	small := `{"notes":"NEFT ref 7781"}`
	large := `{"notes":"` + strings.Repeat("x", 300) + `"}`

	tests := []struct {
		name          string
		limit         int64
		body          string
		contentLength int64
		wantStatus    int
	}{
		{"within limit", 128, small, int64(len(small)), http.StatusCreated},
		{"declared length over limit", 128, large, int64(len(large)), http.StatusRequestEntityTooLarge},
		{"streamed body over limit", 128, large, -1, http.StatusRequestEntityTooLarge},
		{"disabled", 0, large, int64(len(large)), http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.ContentLength = tt.contentLength
			w := httptest.NewRecorder()
			bodyLimitRouter(tt.limit).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusRequestEntityTooLarge {
				assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
				assert.Contains(t, w.Body.String(), "128 bytes")
			}
		})
	}

	t.Run("bodyless request passes", func(t *testing.T) {
		router := bodyLimitRouter(1)
		router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
