package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fabrictrade/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleValidationError(t *testing.T) {
	type paymentInput struct {
		Method string `json:"method" binding:"required,payment_method"`
		Notes  string `json:"notes" binding:"max=5"`
		GSTIN  string `json:"gstin" binding:"omitempty,gstin"`
		Meters int    `json:"meters"`
	}

	SetupValidator()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var in paymentInput
		if err := c.ShouldBindJSON(&in); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	t.Run("lists every failing field by json name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"method":"gold","notes":"far too long","gstin":"27ABCDE1234F1Z"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(RequestIDHeader, "req-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-42", resp.Error.RequestID)
		require.Len(t, resp.Error.Details, 3)
		assert.Equal(t, "method", resp.Error.Details[0].Field)
		assert.Equal(t, "Must be one of: cash bank_transfer cheque upi card", resp.Error.Details[0].Message)
		assert.Equal(t, "notes", resp.Error.Details[1].Field)
		assert.Equal(t, "Must be at most 5 characters", resp.Error.Details[1].Message)
		assert.Equal(t, "gstin", resp.Error.Details[2].Field)
	})

	t.Run("valid input passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"method":"upi","gstin":"27abcde1234f1z5"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	decodeCases := []struct {
		name string
		body string
		want string
	}{
		{"empty body", ``, "Request body is empty"},
		{"truncated json", `{"method":`, "Request body is not valid JSON"},
		{"syntax error", `{method}`, "Request body is not valid JSON"},
		{"wrong type", `{"method":"cash","meters":"ten"}`, `Field "meters" has the wrong type`},
	}
	for _, tc := range decodeCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
			assert.Equal(t, tc.want, resp.Error.Message)
			assert.Empty(t, resp.Error.Details)
		})
	}
}
