package payreq

import (
	"time"

	"github.com/fabrictrade/backend/internal/domain/payreq"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubmitRequest is a customer's report of a payment made outside the system
type SubmitRequest struct {
	BillID         *uuid.UUID      `json:"bill_id"`
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method" binding:"required,payment_method"`
	TransactionRef string          `json:"transaction_ref" binding:"max=100"`
	Notes          string          `json:"notes" binding:"max=500"`
}

// RejectRequest carries the reviewer's reason
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ListQuery holds payment request list query parameters
type ListQuery struct {
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     string     `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}

// Response represents a payment request in API responses
type Response struct {
	ID              uuid.UUID       `json:"id"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	BillID          *uuid.UUID      `json:"bill_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"method"`
	TransactionRef  string          `json:"transaction_ref,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Status          string          `json:"status"`
	ReviewedBy      *uuid.UUID      `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time      `json:"reviewed_at,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	PaymentIDs      []uuid.UUID     `json:"payment_ids"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToResponse converts a domain payment request to a response
func ToResponse(r *payreq.PaymentRequest) Response {
	ids := r.PaymentIDs
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return Response{
		ID:              r.ID,
		CustomerID:      r.CustomerID,
		BillID:          r.BillID,
		Amount:          r.Amount,
		Method:          string(r.Method),
		TransactionRef:  r.TransactionRef,
		Notes:           r.Notes,
		Status:          string(r.Status),
		ReviewedBy:      r.ReviewedBy,
		ReviewedAt:      r.ReviewedAt,
		RejectionReason: r.RejectionReason,
		PaymentIDs:      ids,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
