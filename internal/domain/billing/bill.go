package billing

import (
	"fmt"
	"time"

	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillStatus represents the payment status of a bill
type BillStatus string

const (
	BillStatusUnpaid  BillStatus = "unpaid"  // nothing paid yet
	BillStatusPartial BillStatus = "partial" // 0 < paid < total
	BillStatusPaid    BillStatus = "paid"    // balance due is zero
)

// IsValid checks if the status is a valid BillStatus
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusUnpaid, BillStatusPartial, BillStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of BillStatus
func (s BillStatus) String() string {
	return string(s)
}

// BalanceDue returns max(0, total - paid)
func BalanceDue(total, paid decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, total.Sub(paid))
}

// DeriveStatus maps paid and total amounts to a status.
// The result depends only on its two arguments, never on history.
func DeriveStatus(paid, total decimal.Decimal) BillStatus {
	if BalanceDue(total, paid).IsZero() {
		return BillStatusPaid
	}
	if paid.LessThanOrEqual(decimal.Zero) {
		return BillStatusUnpaid
	}
	return BillStatusPartial
}

// Bill is an invoice issued to a customer, created from an order or entered offline.
// Bills are append-only: they are never deleted and only ApplyPayment mutates them.
type Bill struct {
	shared.BaseAggregateRoot
	BillNumber  string          `json:"bill_number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	OrderID     *uuid.UUID      `json:"order_id,omitempty"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	BalanceDue  decimal.Decimal `json:"balance_due"`
	Status      BillStatus      `json:"status"`
	Notes       string          `json:"notes,omitempty"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
}

// NewBill creates a new unpaid bill with total = subtotal + tax
func NewBill(billNumber string, customerID uuid.UUID, orderID *uuid.UUID, subtotal, taxAmount decimal.Decimal, notes string) (*Bill, error) {
	if billNumber == "" {
		return nil, shared.NewDomainError("INVALID_BILL_NUMBER", "Bill number cannot be empty")
	}
	if len(billNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_BILL_NUMBER", "Bill number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if subtotal.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Subtotal must be positive")
	}
	if taxAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Tax amount cannot be negative")
	}

	total := subtotal.Add(taxAmount)
	b := &Bill{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BillNumber:        billNumber,
		CustomerID:        customerID,
		OrderID:           orderID,
		Subtotal:          subtotal,
		TaxAmount:         taxAmount,
		TotalAmount:       total,
		PaidAmount:        decimal.Zero,
		BalanceDue:        total,
		Status:            BillStatusUnpaid,
		Notes:             notes,
	}
	b.AddDomainEvent(NewBillIssuedEvent(b))
	return b, nil
}

// ApplyPayment adds amount to the paid total and recomputes balance and status.
// amount may not exceed the current balance due.
func (b *Bill) ApplyPayment(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidAmount
	}
	if amount.GreaterThan(b.BalanceDue) {
		return shared.NewDomainError("EXCEEDS_OUTSTANDING",
			fmt.Sprintf("Payment amount %s exceeds balance due %s on bill %s", amount.StringFixed(2), b.BalanceDue.StringFixed(2), b.BillNumber))
	}

	b.PaidAmount = b.PaidAmount.Add(amount)
	b.Recalculate()

	now := time.Now()
	if b.Status == BillStatusPaid {
		b.PaidAt = &now
	}
	b.UpdatedAt = now
	b.IncrementVersion()
	b.AddDomainEvent(NewBillPaymentAppliedEvent(b, amount))

	return nil
}

// Recalculate refreshes the derived BalanceDue and Status fields from the amounts
func (b *Bill) Recalculate() {
	b.BalanceDue = BalanceDue(b.TotalAmount, b.PaidAmount)
	b.Status = DeriveStatus(b.PaidAmount, b.TotalAmount)
}

// IsOutstanding returns true if anything remains to be paid
func (b *Bill) IsOutstanding() bool {
	return b.BalanceDue.GreaterThan(decimal.Zero)
}

// Outstanding returns the allocator's view of this bill
func (b *Bill) Outstanding() OutstandingBill {
	return OutstandingBill{
		BillID:     b.ID,
		BillNumber: b.BillNumber,
		BalanceDue: b.BalanceDue,
		CreatedAt:  b.CreatedAt,
	}
}

// OverdueInterest returns the advisory interest quote for this bill at now
func (b *Bill) OverdueInterest(now time.Time) *InterestQuote {
	return CalculateOverdueInterest(b.BalanceDue, b.CreatedAt, now, b.Status)
}
