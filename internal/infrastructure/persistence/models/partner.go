package models

import (
	"github.com/fabrictrade/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the Customer aggregate.
type CustomerModel struct {
	VersionedRow
	Code        string                 `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string                 `gorm:"type:varchar(200);not null"`
	ContactName string                 `gorm:"type:varchar(100)"`
	Email       string                 `gorm:"type:varchar(200);index"`
	Phone       string                 `gorm:"type:varchar(50)"`
	Address     string                 `gorm:"type:text"`
	GSTIN       string                 `gorm:"column:gstin;type:varchar(15)"`
	CreditLimit decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	UserID      *uuid.UUID             `gorm:"type:uuid;uniqueIndex"`
	Status      partner.CustomerStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: m.root(),
		Code:              m.Code,
		Name:              m.Name,
		ContactName:       m.ContactName,
		Email:             m.Email,
		Phone:             m.Phone,
		Address:           m.Address,
		GSTIN:             m.GSTIN,
		CreditLimit:       m.CreditLimit,
		UserID:            m.UserID,
		Status:            m.Status,
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{
		Code:        c.Code,
		Name:        c.Name,
		ContactName: c.ContactName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		GSTIN:       c.GSTIN,
		CreditLimit: c.CreditLimit,
		UserID:      c.UserID,
		Status:      c.Status,
	}
	m.VersionedRow = versionedRowOf(c.BaseAggregateRoot)
	return m
}
