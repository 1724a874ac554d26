package models

import (
	"time"

	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/fabrictrade/backend/internal/domain/payreq"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRequestModel is the persistence model for a customer payment request.
type PaymentRequestModel struct {
	VersionedRow
	CustomerID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	BillID          *uuid.UUID            `gorm:"type:uuid"`
	Amount          decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Method          billing.PaymentMethod `gorm:"type:varchar(20);not null"`
	TransactionRef  string                `gorm:"type:varchar(100)"`
	Notes           string                `gorm:"type:text"`
	Status          payreq.Status         `gorm:"type:varchar(20);not null;default:'pending';index"`
	ReviewedBy      *uuid.UUID            `gorm:"type:uuid"`
	ReviewedAt      *time.Time
	RejectionReason string      `gorm:"type:text"`
	PaymentIDs      []uuid.UUID `gorm:"type:text;serializer:json"`
}

// TableName returns the table name for GORM
func (PaymentRequestModel) TableName() string {
	return "payment_requests"
}

// ToDomain converts the persistence model to a domain PaymentRequest
func (m *PaymentRequestModel) ToDomain() *payreq.PaymentRequest {
	return &payreq.PaymentRequest{
		BaseAggregateRoot: m.root(),
		CustomerID:        m.CustomerID,
		BillID:            m.BillID,
		Amount:            m.Amount,
		Method:            m.Method,
		TransactionRef:    m.TransactionRef,
		Notes:             m.Notes,
		Status:            m.Status,
		ReviewedBy:        m.ReviewedBy,
		ReviewedAt:        m.ReviewedAt,
		RejectionReason:   m.RejectionReason,
		PaymentIDs:        m.PaymentIDs,
	}
}

// PaymentRequestModelFromDomain creates a persistence model from a domain PaymentRequest
func PaymentRequestModelFromDomain(r *payreq.PaymentRequest) *PaymentRequestModel {
	m := &PaymentRequestModel{
		CustomerID:      r.CustomerID,
		BillID:          r.BillID,
		Amount:          r.Amount,
		Method:          r.Method,
		TransactionRef:  r.TransactionRef,
		Notes:           r.Notes,
		Status:          r.Status,
		ReviewedBy:      r.ReviewedBy,
		ReviewedAt:      r.ReviewedAt,
		RejectionReason: r.RejectionReason,
		PaymentIDs:      r.PaymentIDs,
	}
	m.VersionedRow = versionedRowOf(r.BaseAggregateRoot)
	return m
}
