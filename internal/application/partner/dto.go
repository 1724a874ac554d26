package partner

import (
	"time"

	"github.com/fabrictrade/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest creates a customer together with its login
type CreateAccountRequest struct {
	Code        string           `json:"code" binding:"required,min=1,max=50"`
	Name        string           `json:"name" binding:"required,min=1,max=200"`
	ContactName string           `json:"contact_name" binding:"max=100"`
	Email       string           `json:"email" binding:"omitempty,email,max=200"`
	Phone       string           `json:"phone" binding:"max=50"`
	Address     string           `json:"address" binding:"max=500"`
	GSTIN       string           `json:"gstin" binding:"omitempty,gstin"`
	CreditLimit *decimal.Decimal `json:"credit_limit"`
	Username    string           `json:"username" binding:"required,min=3,max=50"`
	Password    string           `json:"password" binding:"required,min=8,max=72"`
}

// UpdateCustomerRequest replaces a customer's contact details
type UpdateCustomerRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200"`
	ContactName string `json:"contact_name" binding:"max=100"`
	Email       string `json:"email" binding:"omitempty,email,max=200"`
	Phone       string `json:"phone" binding:"max=50"`
	Address     string `json:"address" binding:"max=500"`
	GSTIN       string `json:"gstin" binding:"omitempty,gstin"`
}

func (r UpdateCustomerRequest) contact() partner.ContactInfo {
	return partner.ContactInfo{
		ContactName: r.ContactName,
		Email:       r.Email,
		Phone:       r.Phone,
		Address:     r.Address,
		GSTIN:       r.GSTIN,
	}
}

// SetCreditLimitRequest sets a customer's credit limit; zero removes it
type SetCreditLimitRequest struct {
	CreditLimit decimal.Decimal `json:"credit_limit"`
}

// CustomerListQuery holds customer list query parameters
type CustomerListQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	ContactName string          `json:"contact_name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Address     string          `json:"address"`
	GSTIN       string          `json:"gstin,omitempty"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	UserID      *uuid.UUID      `json:"user_id,omitempty"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

// ToCustomerResponse converts a domain customer to a response
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:          c.ID,
		Code:        c.Code,
		Name:        c.Name,
		ContactName: c.ContactName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		GSTIN:       c.GSTIN,
		CreditLimit: c.CreditLimit,
		UserID:      c.UserID,
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		Version:     c.Version,
	}
}

// CreditResponse is a customer's current credit position
type CreditResponse struct {
	CustomerID uuid.UUID `json:"customer_id"`
	partner.CreditStatus
}
