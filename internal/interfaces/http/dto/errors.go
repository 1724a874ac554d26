package dto

import (
	"net/http"
	"strings"
)

// Transport error codes. Domain errors keep the code the domain layer gave them.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "INVALID_TOKEN"
	ErrCodeTokenRevoked    = "TOKEN_REVOKED"
	ErrCodeRateLimited     = "RATE_LIMIT_EXCEEDED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
)

// Domain error codes the API maps explicitly
const (
	ErrCodeInvalidAmount             = "INVALID_AMOUNT"
	ErrCodeNoOutstandingBills        = "NO_OUTSTANDING_BILLS"
	ErrCodeOverpayment               = "OVERPAYMENT"
	ErrCodePersistenceConflict       = "PERSISTENCE_CONFLICT"
	ErrCodePersistencePartialFailure = "PERSISTENCE_PARTIAL_FAILURE"
	ErrCodePaymentInProgress         = "PAYMENT_IN_PROGRESS"
	ErrCodeIdempotencyUnavailable    = "IDEMPOTENCY_UNAVAILABLE"
	ErrCodeIdempotencyKeyMismatch    = "IDEMPOTENCY_KEY_MISMATCH"
	ErrCodeAlreadyExists             = "ALREADY_EXISTS"
	ErrCodeInvalidState              = "INVALID_STATE"
	ErrCodeInsufficientStock         = "INSUFFICIENT_STOCK"
	ErrCodeCreditLimitExceeded       = "CREDIT_LIMIT_EXCEEDED"
	ErrCodeInvalidCredentials        = "INVALID_CREDENTIALS"
	ErrCodeAccountLocked             = "ACCOUNT_LOCKED"
	ErrCodeAccountDeactivated        = "ACCOUNT_DEACTIVATED"
	ErrCodePrintingUnavailable       = "PRINTING_UNAVAILABLE"
	ErrCodeStorageUnavailable        = "STORAGE_UNAVAILABLE"
	ErrCodeAssistantUnavailable      = "ASSISTANT_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeTokenExpired:    http.StatusUnauthorized,
	ErrCodeTokenInvalid:    http.StatusUnauthorized,
	ErrCodeTokenRevoked:    http.StatusUnauthorized,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeConflict:        http.StatusConflict,

	// payments
	ErrCodeInvalidAmount:             http.StatusUnprocessableEntity,
	ErrCodeNoOutstandingBills:        http.StatusOK,
	ErrCodeOverpayment:               http.StatusUnprocessableEntity,
	ErrCodePersistenceConflict:       http.StatusConflict,
	ErrCodePersistencePartialFailure: http.StatusServiceUnavailable,
	ErrCodePaymentInProgress:         http.StatusConflict,
	ErrCodeIdempotencyUnavailable:    http.StatusServiceUnavailable,
	ErrCodeIdempotencyKeyMismatch:    http.StatusUnprocessableEntity,

	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,
	ErrCodeCreditLimitExceeded: http.StatusUnprocessableEntity,

	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeAccountLocked:      http.StatusLocked,
	ErrCodeAccountDeactivated: http.StatusForbidden,

	ErrCodePrintingUnavailable:  http.StatusServiceUnavailable,
	ErrCodeStorageUnavailable:   http.StatusServiceUnavailable,
	ErrCodeAssistantUnavailable: http.StatusServiceUnavailable,
}

// businessRuleCodes are rejected requests that are not INVALID_* input errors
var businessRuleCodes = map[string]bool{
	"BILL_CUSTOMER_MISMATCH": true,
	"DUPLICATE_LINE":         true,
	"EMPTY_ORDER":            true,
	"EXCEEDS_OUTSTANDING":    true,
}

// GetHTTPStatus returns the HTTP status for an error code.
// Unmapped INVALID_* domain codes are 422, anything else unknown is 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") || businessRuleCodes[code] {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// IsInformational reports whether code describes a successful request that changed nothing
func IsInformational(code string) bool {
	return GetHTTPStatus(code) == http.StatusOK
}
