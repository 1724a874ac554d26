package payreq

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the review state of a payment request
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// PaymentRequest is a customer's claim that they paid offline, awaiting review
// by an accountant. Approval records real payments; rejection records nothing.
type PaymentRequest struct {
	shared.BaseAggregateRoot
	CustomerID      uuid.UUID             `json:"customer_id"`
	BillID          *uuid.UUID            `json:"bill_id,omitempty"` // nil means allocate oldest-first
	Amount          decimal.Decimal       `json:"amount"`
	Method          billing.PaymentMethod `json:"method"`
	TransactionRef  string                `json:"transaction_ref,omitempty"`
	Notes           string                `json:"notes,omitempty"`
	Status          Status                `json:"status"`
	ReviewedBy      *uuid.UUID            `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time            `json:"reviewed_at,omitempty"`
	RejectionReason string                `json:"rejection_reason,omitempty"`
	PaymentIDs      []uuid.UUID           `json:"payment_ids,omitempty"`
}

// NewPaymentRequest creates a pending request
func NewPaymentRequest(customerID uuid.UUID, billID *uuid.UUID, amount decimal.Decimal, method billing.PaymentMethod, transactionRef, notes string) (*PaymentRequest, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if err := billing.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	return &PaymentRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		BillID:            billID,
		Amount:            amount,
		Method:            method,
		TransactionRef:    strings.TrimSpace(transactionRef),
		Notes:             notes,
		Status:            StatusPending,
		PaymentIDs:        make([]uuid.UUID, 0),
	}, nil
}

func (r *PaymentRequest) ensurePending() error {
	if r.Status != StatusPending {
		return shared.WrapDomainError(shared.ErrInvalidState.Code,
			fmt.Sprintf("Payment request is already %s", r.Status), shared.ErrInvalidState)
	}
	return nil
}

// CanApprove reports whether the request is still awaiting review
func (r *PaymentRequest) CanApprove() error {
	return r.ensurePending()
}

// Approve marks the request approved and links the payments it produced
func (r *PaymentRequest) Approve(reviewer uuid.UUID, paymentIDs []uuid.UUID) error {
	if err := r.ensurePending(); err != nil {
		return err
	}
	now := time.Now()
	r.Status = StatusApproved
	r.ReviewedBy = &reviewer
	r.ReviewedAt = &now
	r.PaymentIDs = paymentIDs
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}

// Reject marks the request rejected with a reason
func (r *PaymentRequest) Reject(reviewer uuid.UUID, reason string) error {
	if err := r.ensurePending(); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}
	now := time.Now()
	r.Status = StatusRejected
	r.ReviewedBy = &reviewer
	r.ReviewedAt = &now
	r.RejectionReason = reason
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}

// Filter defines filtering options for payment request queries
type Filter struct {
	shared.Filter
	CustomerID *uuid.UUID
	Status     *Status
}

// Repository defines the interface for payment request persistence
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentRequest, error)
	FindAll(ctx context.Context, filter Filter) ([]PaymentRequest, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Create(ctx context.Context, req *PaymentRequest) error
	// SaveWithLock returns shared.ErrPersistenceConflict on a version mismatch
	SaveWithLock(ctx context.Context, req *PaymentRequest) error
}
