package models

import (
	"time"

	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillModel is the persistence model for the Bill aggregate.
type BillModel struct {
	VersionedRow
	BillNumber  string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID  uuid.UUID          `gorm:"type:uuid;not null;index"`
	OrderID     *uuid.UUID         `gorm:"type:uuid;uniqueIndex"`
	Subtotal    decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	TaxAmount   decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	PaidAmount  decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	BalanceDue  decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	Status      billing.BillStatus `gorm:"type:varchar(20);not null;default:'unpaid';index"`
	Notes       string             `gorm:"type:text"`
	PaidAt      *time.Time
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the persistence model to a domain Bill
func (m *BillModel) ToDomain() *billing.Bill {
	return &billing.Bill{
		BaseAggregateRoot: m.root(),
		BillNumber:        m.BillNumber,
		CustomerID:        m.CustomerID,
		OrderID:           m.OrderID,
		Subtotal:          m.Subtotal,
		TaxAmount:         m.TaxAmount,
		TotalAmount:       m.TotalAmount,
		PaidAmount:        m.PaidAmount,
		BalanceDue:        m.BalanceDue,
		Status:            m.Status,
		Notes:             m.Notes,
		PaidAt:            m.PaidAt,
	}
}

// BillModelFromDomain creates a persistence model from a domain Bill
func BillModelFromDomain(b *billing.Bill) *BillModel {
	m := &BillModel{
		BillNumber:  b.BillNumber,
		CustomerID:  b.CustomerID,
		OrderID:     b.OrderID,
		Subtotal:    b.Subtotal,
		TaxAmount:   b.TaxAmount,
		TotalAmount: b.TotalAmount,
		PaidAmount:  b.PaidAmount,
		BalanceDue:  b.BalanceDue,
		Status:      b.Status,
		Notes:       b.Notes,
		PaidAt:      b.PaidAt,
	}
	m.VersionedRow = versionedRowOf(b.BaseAggregateRoot)
	return m
}

// PaymentModel is the persistence model for a Payment. Rows are never updated.
type PaymentModel struct {
	Row
	BillID           uuid.UUID             `gorm:"type:uuid;not null;index"`
	CustomerID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Method           billing.PaymentMethod `gorm:"type:varchar(20);not null"`
	TransactionRef   string                `gorm:"type:varchar(100)"`
	Notes            string                `gorm:"type:text"`
	PaymentRequestID *uuid.UUID            `gorm:"type:uuid;index"`
	RecordedBy       *uuid.UUID            `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseEntity:       m.entity(),
		BillID:           m.BillID,
		CustomerID:       m.CustomerID,
		Amount:           m.Amount,
		Method:           m.Method,
		TransactionRef:   m.TransactionRef,
		Notes:            m.Notes,
		PaymentRequestID: m.PaymentRequestID,
		RecordedBy:       m.RecordedBy,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{
		BillID:           p.BillID,
		CustomerID:       p.CustomerID,
		Amount:           p.Amount,
		Method:           p.Method,
		TransactionRef:   p.TransactionRef,
		Notes:            p.Notes,
		PaymentRequestID: p.PaymentRequestID,
		RecordedBy:       p.RecordedBy,
	}
	m.Row = rowOf(p.BaseEntity)
	return m
}
