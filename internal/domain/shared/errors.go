package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.err
}

// Is matches another DomainError by code, so errors.Is works against the sentinels below
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapDomainError creates a domain error that keeps cause in its chain
func WrapDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		err:     cause,
	}
}

// CodeOf returns the domain error code carried by err, or "" if there is none
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrCreditLimitExceeded = NewDomainError("CREDIT_LIMIT_EXCEEDED", "Customer credit limit exceeded")
)

// Payment errors
var (
	ErrInvalidAmount      = NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	ErrNoOutstandingBills = NewDomainError("NO_OUTSTANDING_BILLS", "Customer has no outstanding bills")
	ErrOverpayment        = NewDomainError("OVERPAYMENT", "Payment exceeds the outstanding balance")
	// ErrPersistenceConflict is returned when a bill changed between read and write.
	// Callers retry the whole read-allocate-write cycle.
	ErrPersistenceConflict = NewDomainError("PERSISTENCE_CONFLICT", "Bill was modified concurrently")
	// ErrPersistencePartialFailure means the batch was rolled back; nothing was recorded.
	ErrPersistencePartialFailure = NewDomainError("PERSISTENCE_PARTIAL_FAILURE", "Payment not recorded, please retry")
)
