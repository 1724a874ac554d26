package billing

import (
	"context"
	"time"

	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillFilter defines filtering options for bill queries
type BillFilter struct {
	shared.Filter
	CustomerID *uuid.UUID  // Filter by customer
	Status     *BillStatus // Filter by status
	FromDate   *time.Time  // Filter by creation date range start
	ToDate     *time.Time  // Filter by creation date range end
}

// BillRepository defines the interface for bill persistence
type BillRepository interface {
	// FindByID returns nil, nil when the bill does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)

	// FindAll finds bills matching the filter
	FindAll(ctx context.Context, filter BillFilter) ([]Bill, error)

	// Count counts bills matching the filter
	Count(ctx context.Context, filter BillFilter) (int64, error)

	// FindOutstandingByCustomer returns the customer's bills with balance_due > 0,
	// ordered by created_at ascending (oldest first)
	FindOutstandingByCustomer(ctx context.Context, customerID uuid.UUID) ([]Bill, error)

	// FindOutstanding returns every bill with balance_due > 0, oldest first
	FindOutstanding(ctx context.Context) ([]Bill, error)

	// SumOutstandingByCustomer returns the customer's total balance due
	SumOutstandingByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)

	// Create inserts a new bill
	Create(ctx context.Context, bill *Bill) error

	// SaveWithLock updates the bill only if its stored version is bill.Version-1.
	// Returns shared.ErrPersistenceConflict when another writer got there first.
	SaveWithLock(ctx context.Context, bill *Bill) error

	// GenerateBillNumber generates a unique bill number
	GenerateBillNumber(ctx context.Context) (string, error)
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	CustomerID *uuid.UUID
	BillID     *uuid.UUID
	FromDate   *time.Time
	ToDate     *time.Time
}

// PaymentRepository defines the interface for payment persistence.
// Payments are insert-only.
type PaymentRepository interface {
	// Create inserts a new payment
	Create(ctx context.Context, payment *Payment) error

	// FindByBill returns all payments on a bill, oldest first
	FindByBill(ctx context.Context, billID uuid.UUID) ([]Payment, error)

	// FindAll finds payments matching the filter
	FindAll(ctx context.Context, filter PaymentFilter) ([]Payment, error)

	// SumByBill returns the sum of payment amounts for a bill
	SumByBill(ctx context.Context, billID uuid.UUID) (decimal.Decimal, error)
}
