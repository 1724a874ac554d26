package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPlaced:
		return target == OrderStatusShipped
	case OrderStatusShipped:
		return target == OrderStatusDelivered
	}
	return false
}

// OrderLine is one fabric on an order
type OrderLine struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	Meters      decimal.Decimal `json:"meters"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// Order is a customer's purchase of one or more fabrics.
// Placing an order issues exactly one bill; orders are not cancellable.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber string          `json:"order_number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	Lines       []OrderLine     `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxRate     decimal.Decimal `json:"tax_rate"` // percent, e.g. 5 for 5%
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      OrderStatus     `json:"status"`
	BillID      *uuid.UUID      `json:"bill_id,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	PlacedBy    *uuid.UUID      `json:"placed_by,omitempty"`
}

// NewOrder starts an order with no lines
func NewOrder(orderNumber string, customerID uuid.UUID, taxRate decimal.Decimal, notes string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	}
	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		Lines:             make([]OrderLine, 0),
		Subtotal:          decimal.Zero,
		TaxRate:           taxRate,
		TaxAmount:         decimal.Zero,
		TotalAmount:       decimal.Zero,
		Status:            OrderStatusPlaced,
		Notes:             notes,
	}, nil
}

// AddLine adds meters of a product at unitPrice
func (o *Order) AddLine(productID uuid.UUID, sku, name string, meters, unitPrice decimal.Decimal) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if meters.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Meters for %s must be positive", sku))
	}
	if unitPrice.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PRICE", fmt.Sprintf("Unit price for %s must be positive", sku))
	}
	for _, l := range o.Lines {
		if l.ProductID == productID {
			return shared.NewDomainError("DUPLICATE_LINE", fmt.Sprintf("Product %s appears more than once", sku))
		}
	}
	o.Lines = append(o.Lines, OrderLine{
		ID:          uuid.New(),
		ProductID:   productID,
		SKU:         sku,
		ProductName: name,
		Meters:      meters,
		UnitPrice:   unitPrice,
		Amount:      meters.Mul(unitPrice).Round(2),
	})
	o.recalculateTotals()
	return nil
}

func (o *Order) recalculateTotals() {
	subtotal := decimal.Zero
	for _, l := range o.Lines {
		subtotal = subtotal.Add(l.Amount)
	}
	o.Subtotal = subtotal
	o.TaxAmount = subtotal.Mul(o.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	o.TotalAmount = o.Subtotal.Add(o.TaxAmount)
}

// Validate checks the order is ready to be placed
func (o *Order) Validate() error {
	if len(o.Lines) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Order must have at least one line")
	}
	return nil
}

// AttachBill records the bill issued for this order
func (o *Order) AttachBill(billID uuid.UUID) {
	o.BillID = &billID
}

// Advance moves the order to the next fulfilment status
func (o *Order) Advance(target OrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// TotalMeters returns the sum of all line meters
func (o *Order) TotalMeters() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Meters)
	}
	return total
}

// OrderFilter defines filtering options for order queries
type OrderFilter struct {
	shared.Filter
	CustomerID *uuid.UUID
	Status     *OrderStatus
	FromDate   *time.Time
	ToDate     *time.Time
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, error)
	Count(ctx context.Context, filter OrderFilter) (int64, error)
	Create(ctx context.Context, order *Order) error
	// SaveWithLock returns shared.ErrPersistenceConflict on a version mismatch
	SaveWithLock(ctx context.Context, order *Order) error
	GenerateOrderNumber(ctx context.Context) (string, error)
}
