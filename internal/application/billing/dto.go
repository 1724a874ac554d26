package billing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateBillRequest is an offline bill entered by an accountant
type CreateBillRequest struct {
	CustomerID uuid.UUID       `json:"customer_id" binding:"required"`
	OrderID    *uuid.UUID      `json:"order_id"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	Notes      string          `json:"notes" binding:"max=500"`
}

// RecordPaymentRequest records money received from a customer.
// With BillID the payment targets one bill; without it the amount is spread oldest bill first.
type RecordPaymentRequest struct {
	CustomerID     uuid.UUID       `json:"customer_id" binding:"required"`
	BillID         *uuid.UUID      `json:"bill_id"`
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method" binding:"required,payment_method"`
	TransactionRef string          `json:"transaction_ref" binding:"max=100"`
	Notes          string          `json:"notes" binding:"max=500"`
}

// ToEvent converts the request into a PaymentEvent recorded by staffID
func (r RecordPaymentRequest) ToEvent(staffID *uuid.UUID) PaymentEvent {
	return PaymentEvent{
		CustomerID:     r.CustomerID,
		BillID:         r.BillID,
		Amount:         r.Amount,
		Method:         billing.PaymentMethod(r.Method),
		TransactionRef: r.TransactionRef,
		Notes:          r.Notes,
		RecordedBy:     staffID,
	}
}

// Fingerprint hashes the fields that decide what gets recorded. Amounts that
// differ only in trailing zeros hash the same.
func (r RecordPaymentRequest) Fingerprint() string {
	bill := ""
	if r.BillID != nil {
		bill = r.BillID.String()
	}
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%q|%q", r.CustomerID, bill, r.Amount.String(), r.Method, r.TransactionRef, r.Notes)
	return hex.EncodeToString(h.Sum(nil))
}

// BillListQuery holds bill list query parameters
type BillListQuery struct {
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     string     `form:"status" binding:"omitempty,oneof=unpaid partial paid"`
	FromDate   *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate     *time.Time `form:"to_date" time_format:"2006-01-02"`
}

// BillResponse represents a bill in API responses
type BillResponse struct {
	ID          uuid.UUID              `json:"id"`
	BillNumber  string                 `json:"bill_number"`
	CustomerID  uuid.UUID              `json:"customer_id"`
	OrderID     *uuid.UUID             `json:"order_id,omitempty"`
	Subtotal    decimal.Decimal        `json:"subtotal"`
	TaxAmount   decimal.Decimal        `json:"tax_amount"`
	TotalAmount decimal.Decimal        `json:"total_amount"`
	PaidAmount  decimal.Decimal        `json:"paid_amount"`
	BalanceDue  decimal.Decimal        `json:"balance_due"`
	Status      string                 `json:"status"`
	Notes       string                 `json:"notes,omitempty"`
	PaidAt      *time.Time             `json:"paid_at,omitempty"`
	Interest    *billing.InterestQuote `json:"interest,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	Version     int                    `json:"version"`
}

// ToBillResponse maps a bill and its advisory interest quote at now
func ToBillResponse(b *billing.Bill, now time.Time) BillResponse {
	return BillResponse{
		ID:          b.ID,
		BillNumber:  b.BillNumber,
		CustomerID:  b.CustomerID,
		OrderID:     b.OrderID,
		Subtotal:    b.Subtotal,
		TaxAmount:   b.TaxAmount,
		TotalAmount: b.TotalAmount,
		PaidAmount:  b.PaidAmount,
		BalanceDue:  b.BalanceDue,
		Status:      b.Status.String(),
		Notes:       b.Notes,
		PaidAt:      b.PaidAt,
		Interest:    b.OverdueInterest(now),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		Version:     b.Version,
	}
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID               uuid.UUID       `json:"id"`
	BillID           uuid.UUID       `json:"bill_id"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	Amount           decimal.Decimal `json:"amount"`
	Method           string          `json:"method"`
	TransactionRef   string          `json:"transaction_ref,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	PaymentRequestID *uuid.UUID      `json:"payment_request_id,omitempty"`
	RecordedBy       *uuid.UUID      `json:"recorded_by,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ToPaymentResponse maps a payment
func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID,
		BillID:           p.BillID,
		CustomerID:       p.CustomerID,
		Amount:           p.Amount,
		Method:           string(p.Method),
		TransactionRef:   p.TransactionRef,
		Notes:            p.Notes,
		PaymentRequestID: p.PaymentRequestID,
		RecordedBy:       p.RecordedBy,
		CreatedAt:        p.CreatedAt,
	}
}
