package models

import (
	"github.com/fabrictrade/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate.
type OrderModel struct {
	VersionedRow
	OrderNumber string            `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID  uuid.UUID         `gorm:"type:uuid;not null;index"`
	Subtotal    decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	TaxRate     decimal.Decimal   `gorm:"type:decimal(5,2);not null;default:0"`
	TaxAmount   decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	Status      trade.OrderStatus `gorm:"type:varchar(20);not null;default:'placed';index"`
	BillID      *uuid.UUID        `gorm:"type:uuid"`
	Notes       string            `gorm:"type:text"`
	PlacedBy    *uuid.UUID        `gorm:"type:uuid"`
	Lines       []OrderLineModel  `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel is one product line of an order.
type OrderLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU         string          `gorm:"column:sku;type:varchar(50);not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Meters      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *trade.Order {
	lines := make([]trade.OrderLine, len(m.Lines))
	for i, l := range m.Lines {
		lines[i] = trade.OrderLine{
			ID:          l.ID,
			ProductID:   l.ProductID,
			SKU:         l.SKU,
			ProductName: l.ProductName,
			Meters:      l.Meters,
			UnitPrice:   l.UnitPrice,
			Amount:      l.Amount,
		}
	}
	return &trade.Order{
		BaseAggregateRoot: m.root(),
		OrderNumber:       m.OrderNumber,
		CustomerID:        m.CustomerID,
		Lines:             lines,
		Subtotal:          m.Subtotal,
		TaxRate:           m.TaxRate,
		TaxAmount:         m.TaxAmount,
		TotalAmount:       m.TotalAmount,
		Status:            m.Status,
		BillID:            m.BillID,
		Notes:             m.Notes,
		PlacedBy:          m.PlacedBy,
	}
}

// OrderModelFromDomain creates a persistence model from a domain Order, lines included
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{
		OrderNumber: o.OrderNumber,
		CustomerID:  o.CustomerID,
		Subtotal:    o.Subtotal,
		TaxRate:     o.TaxRate,
		TaxAmount:   o.TaxAmount,
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
		BillID:      o.BillID,
		Notes:       o.Notes,
		PlacedBy:    o.PlacedBy,
		Lines:       make([]OrderLineModel, len(o.Lines)),
	}
	m.VersionedRow = versionedRowOf(o.BaseAggregateRoot)
	for i, l := range o.Lines {
		m.Lines[i] = OrderLineModel{
			ID:          l.ID,
			OrderID:     o.ID,
			ProductID:   l.ProductID,
			SKU:         l.SKU,
			ProductName: l.ProductName,
			Meters:      l.Meters,
			UnitPrice:   l.UnitPrice,
			Amount:      l.Amount,
		}
	}
	return m
}
