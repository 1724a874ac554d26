package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInvalidAmount, http.StatusUnprocessableEntity},
		{ErrCodeNoOutstandingBills, http.StatusOK},
		{ErrCodePersistenceConflict, http.StatusConflict},
		{ErrCodePersistencePartialFailure, http.StatusServiceUnavailable},
		{ErrCodeOverpayment, http.StatusUnprocessableEntity},
		{ErrCodePaymentInProgress, http.StatusConflict},
		{ErrCodeIdempotencyUnavailable, http.StatusServiceUnavailable},
		{ErrCodeIdempotencyKeyMismatch, http.StatusUnprocessableEntity},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeCreditLimitExceeded, http.StatusUnprocessableEntity},
		{ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{ErrCodeAccountLocked, http.StatusLocked},
		{ErrCodeAssistantUnavailable, http.StatusServiceUnavailable},
		{ErrCodeTokenInvalid, http.StatusUnauthorized},
		{ErrCodeValidation, http.StatusBadRequest},
		{"INVALID_SKU", http.StatusUnprocessableEntity},
		{"EMPTY_ORDER", http.StatusUnprocessableEntity},
		{"PASSWORD_HASH_ERROR", http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestIsInformational(t *testing.T) {
	assert.True(t, IsInformational(ErrCodeNoOutstandingBills))
	assert.False(t, IsInformational(ErrCodeInvalidAmount))
	assert.False(t, IsInformational("UNMAPPED"))
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 41, 2, 20)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	resp = NewSuccessResponseWithMeta(nil, 0, 1, 0)
	assert.Equal(t, 0, resp.Meta.TotalPages)
}

func TestErrorResponseJSON(t *testing.T) {
	body, err := json.Marshal(NewErrorResponse(ErrCodeInvalidAmount, "Amount must be positive", "req-1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":{"code":"INVALID_AMOUNT","message":"Amount must be positive","request_id":"req-1"}}`, string(body))
}

func TestNoticeResponseJSON(t *testing.T) {
	body, err := json.Marshal(NewNoticeResponse(map[string]string{"remainder": "100"}, ErrCodeNoOutstandingBills, "nothing owed"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"remainder":"100"},"notice":{"code":"NO_OUTSTANDING_BILLS","message":"nothing owed"}}`, string(body))
}
