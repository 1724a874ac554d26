package trade

import (
	"time"

	"github.com/fabrictrade/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineRequest asks for meters of one product at its current price
type OrderLineRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Meters    decimal.Decimal `json:"meters"`
}

// PlaceOrderRequest places an order. CustomerID is ignored for customer
// callers; their own customer is used.
type PlaceOrderRequest struct {
	CustomerID uuid.UUID          `json:"customer_id"`
	Lines      []OrderLineRequest `json:"lines" binding:"required,min=1,max=50,dive"`
	Notes      string             `json:"notes" binding:"max=500"`
}

// AdvanceOrderRequest moves an order along placed -> shipped -> delivered
type AdvanceOrderRequest struct {
	Status string `json:"status" binding:"required,oneof=shipped delivered"`
}

// OrderListQuery holds order list query parameters
type OrderListQuery struct {
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     string     `form:"status" binding:"omitempty,oneof=placed shipped delivered"`
	FromDate   *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate     *time.Time `form:"to_date" time_format:"2006-01-02"`
}

// OrderLineResponse is one line of an order
type OrderLineResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	Meters      decimal.Decimal `json:"meters"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID          uuid.UUID           `json:"id"`
	OrderNumber string              `json:"order_number"`
	CustomerID  uuid.UUID           `json:"customer_id"`
	Lines       []OrderLineResponse `json:"lines"`
	Subtotal    decimal.Decimal     `json:"subtotal"`
	TaxRate     decimal.Decimal     `json:"tax_rate"`
	TaxAmount   decimal.Decimal     `json:"tax_amount"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	TotalMeters decimal.Decimal     `json:"total_meters"`
	Status      string              `json:"status"`
	BillID      *uuid.UUID          `json:"bill_id,omitempty"`
	Notes       string              `json:"notes,omitempty"`
	PlacedBy    *uuid.UUID          `json:"placed_by,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Version     int                 `json:"version"`
}

// PlaceOrderResponse is the placed order plus the bill it issued
type PlaceOrderResponse struct {
	Order      OrderResponse `json:"order"`
	BillNumber string        `json:"bill_number"`
}

// ToOrderResponse converts a domain order to a response
func ToOrderResponse(o *trade.Order) OrderResponse {
	lines := make([]OrderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineResponse{
			ProductID:   l.ProductID,
			SKU:         l.SKU,
			ProductName: l.ProductName,
			Meters:      l.Meters,
			UnitPrice:   l.UnitPrice,
			Amount:      l.Amount,
		}
	}
	return OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		CustomerID:  o.CustomerID,
		Lines:       lines,
		Subtotal:    o.Subtotal,
		TaxRate:     o.TaxRate,
		TaxAmount:   o.TaxAmount,
		TotalAmount: o.TotalAmount,
		TotalMeters: o.TotalMeters(),
		Status:      string(o.Status),
		BillID:      o.BillID,
		Notes:       o.Notes,
		PlacedBy:    o.PlacedBy,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		Version:     o.Version,
	}
}
