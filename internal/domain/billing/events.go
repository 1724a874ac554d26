package billing

import (
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const aggregateTypeBill = "Bill"

// Bill event types
const (
	EventBillIssued         = "BillIssued"
	EventBillPaymentApplied = "BillPaymentApplied"
)

// BillIssuedEvent is raised when a new bill is created
type BillIssuedEvent struct {
	shared.BaseDomainEvent
	BillNumber  string          `json:"bill_number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	OrderID     *uuid.UUID      `json:"order_id,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewBillIssuedEvent creates a new BillIssuedEvent
func NewBillIssuedEvent(b *Bill) *BillIssuedEvent {
	return &BillIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventBillIssued, aggregateTypeBill, b.ID),
		BillNumber:      b.BillNumber,
		CustomerID:      b.CustomerID,
		OrderID:         b.OrderID,
		TotalAmount:     b.TotalAmount,
	}
}

// BillPaymentAppliedEvent is raised each time a payment lands on a bill
type BillPaymentAppliedEvent struct {
	shared.BaseDomainEvent
	BillNumber    string          `json:"bill_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	AmountApplied decimal.Decimal `json:"amount_applied"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
	Status        BillStatus      `json:"status"`
}

// NewBillPaymentAppliedEvent creates a new BillPaymentAppliedEvent
func NewBillPaymentAppliedEvent(b *Bill, amount decimal.Decimal) *BillPaymentAppliedEvent {
	return &BillPaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventBillPaymentApplied, aggregateTypeBill, b.ID),
		BillNumber:      b.BillNumber,
		CustomerID:      b.CustomerID,
		AmountApplied:   amount,
		PaidAmount:      b.PaidAmount,
		BalanceDue:      b.BalanceDue,
		Status:          b.Status,
	}
}
