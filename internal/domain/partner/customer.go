package partner

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// Customer is a wholesale buyer with a login account and a credit limit
type Customer struct {
	shared.BaseAggregateRoot
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	ContactName string          `json:"contact_name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Address     string          `json:"address"`
	GSTIN       string          `json:"gstin,omitempty"`
	CreditLimit decimal.Decimal `json:"credit_limit"` // zero means no limit
	UserID      *uuid.UUID      `json:"user_id,omitempty"`
	Status      CustomerStatus  `json:"status"`
}

// ContactInfo groups the editable contact fields
type ContactInfo struct {
	ContactName string
	Email       string
	Phone       string
	Address     string
	GSTIN       string
}

// NewCustomer creates a new active customer without a credit limit
func NewCustomer(code, name string, contact ContactInfo) (*Customer, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Customer code must be 1-50 characters")
	}
	c := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		CreditLimit:       decimal.Zero,
		Status:            CustomerStatusActive,
	}
	if err := c.setDetails(name, contact); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces name and contact details
func (c *Customer) Update(name string, contact ContactInfo) error {
	if err := c.setDetails(name, contact); err != nil {
		return err
	}
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

func (c *Customer) setDetails(name string, contact ContactInfo) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name must be 1-200 characters")
	}
	if contact.Email != "" {
		if _, err := mail.ParseAddress(contact.Email); err != nil {
			return shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
		}
	}
	c.Name = name
	c.ContactName = contact.ContactName
	c.Email = strings.ToLower(contact.Email)
	c.Phone = contact.Phone
	c.Address = contact.Address
	c.GSTIN = strings.ToUpper(contact.GSTIN)
	return nil
}

// SetCreditLimit sets the customer's credit limit. Zero removes the limit.
func (c *Customer) SetCreditLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}
	c.CreditLimit = limit
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// LinkUser attaches the login account
func (c *Customer) LinkUser(userID uuid.UUID) {
	c.UserID = &userID
}

// HasCreditLimit returns true if customer has a credit limit set
func (c *Customer) HasCreditLimit() bool {
	return c.CreditLimit.GreaterThan(decimal.Zero)
}

// IsActive returns true if the customer may place orders
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

// Deactivate blocks new orders
func (c *Customer) Deactivate() {
	c.Status = CustomerStatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// CreditStatus is a snapshot of a customer's credit position
type CreditStatus struct {
	CreditLimit     decimal.Decimal `json:"credit_limit"`
	Outstanding     decimal.Decimal `json:"outstanding"`
	AvailableCredit decimal.Decimal `json:"available_credit"`
	Unlimited       bool            `json:"unlimited"`
}

// Credit returns the credit position given the customer's current outstanding balance
func (c *Customer) Credit(outstanding decimal.Decimal) CreditStatus {
	if !c.HasCreditLimit() {
		return CreditStatus{CreditLimit: decimal.Zero, Outstanding: outstanding, AvailableCredit: decimal.Zero, Unlimited: true}
	}
	return CreditStatus{
		CreditLimit:     c.CreditLimit,
		Outstanding:     outstanding,
		AvailableCredit: decimal.Max(decimal.Zero, c.CreditLimit.Sub(outstanding)),
	}
}

// CheckCredit fails when outstanding+amount would exceed the credit limit
func (c *Customer) CheckCredit(outstanding, amount decimal.Decimal) error {
	if !c.HasCreditLimit() {
		return nil
	}
	if outstanding.Add(amount).GreaterThan(c.CreditLimit) {
		return shared.WrapDomainError(shared.ErrCreditLimitExceeded.Code,
			fmt.Sprintf("Order of %s would exceed credit limit %s (outstanding %s)",
				amount.StringFixed(2), c.CreditLimit.StringFixed(2), outstanding.StringFixed(2)),
			shared.ErrCreditLimitExceeded)
	}
	return nil
}

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByCode(ctx context.Context, code string) (*Customer, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Create(ctx context.Context, customer *Customer) error
	// SaveWithLock returns shared.ErrPersistenceConflict on a version mismatch
	SaveWithLock(ctx context.Context, customer *Customer) error
}
