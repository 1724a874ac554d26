package billing

import (
	"time"

	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places the ledger stores for money
const MoneyScale = 2

// ValidateAmount accepts a positive amount with at most MoneyScale decimal places.
// Finer amounts would be rounded per column by the database and leave paid and
// balance out of step.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidAmount
	}
	if !amount.Equal(amount.Truncate(MoneyScale)) {
		return shared.NewDomainError(shared.ErrInvalidAmount.Code, "Amount cannot have more than 2 decimal places")
	}
	return nil
}

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodUPI          PaymentMethod = "upi"
	PaymentMethodCard         PaymentMethod = "card"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheque, PaymentMethodUPI, PaymentMethodCard:
		return true
	}
	return false
}

// Payment is one monetary transaction applied to exactly one bill.
// Payments are immutable; corrections are recorded as new payments.
type Payment struct {
	shared.BaseEntity
	BillID           uuid.UUID       `json:"bill_id"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	Amount           decimal.Decimal `json:"amount"`
	Method           PaymentMethod   `json:"method"`
	TransactionRef   string          `json:"transaction_ref,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	PaymentRequestID *uuid.UUID      `json:"payment_request_id,omitempty"`
	RecordedBy       *uuid.UUID      `json:"recorded_by,omitempty"`
}

// NewPayment creates a payment of amount against billID
func NewPayment(billID, customerID uuid.UUID, amount decimal.Decimal, method PaymentMethod, transactionRef, notes string) (*Payment, error) {
	if billID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BILL", "Bill ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if len(transactionRef) > 100 {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_REF", "Transaction reference cannot exceed 100 characters")
	}

	p := &Payment{
		BaseEntity:     shared.NewBaseEntity(),
		BillID:         billID,
		CustomerID:     customerID,
		Amount:         amount,
		Method:         method,
		TransactionRef: transactionRef,
		Notes:          notes,
	}
	p.UpdatedAt = p.CreatedAt
	return p, nil
}

// SumPayments returns the total of the given payments' amounts
func SumPayments(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// Stamp fixes the creation time, used when several rows of one event share a timestamp
func (p *Payment) Stamp(at time.Time) {
	p.CreatedAt = at
	p.UpdatedAt = at
}
