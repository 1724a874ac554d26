package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a fabric in the catalog
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product is one fabric SKU, sold by the meter
type Product struct {
	shared.BaseAggregateRoot
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Composition   string          `json:"composition"` // e.g. "60% cotton, 40% polyester"
	WidthCM       int             `json:"width_cm"`
	GSM           int             `json:"gsm"` // grams per square meter
	Color         string          `json:"color"`
	PricePerMeter decimal.Decimal `json:"price_per_meter"`
	StockMeters   decimal.Decimal `json:"stock_meters"`
	Status        ProductStatus   `json:"status"`
}

// ProductSpec carries the editable attributes of a product
type ProductSpec struct {
	Name          string
	Composition   string
	WidthCM       int
	GSM           int
	Color         string
	PricePerMeter decimal.Decimal
}

// NewProduct creates a new active product with no stock
func NewProduct(sku string, spec ProductSpec) (*Product, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" || len(sku) > 50 {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU must be 1-50 characters")
	}
	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		StockMeters:       decimal.Zero,
		Status:            ProductStatusActive,
	}
	if err := p.apply(spec); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the product's editable attributes
func (p *Product) Update(spec ProductSpec) error {
	if err := p.apply(spec); err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

func (p *Product) apply(spec ProductSpec) error {
	name := strings.TrimSpace(spec.Name)
	if name == "" || len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name must be 1-200 characters")
	}
	if spec.PricePerMeter.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PRICE", "Price per meter must be positive")
	}
	if spec.WidthCM < 0 || spec.GSM < 0 {
		return shared.NewDomainError("INVALID_SPEC", "Width and GSM cannot be negative")
	}
	p.Name = name
	p.Composition = spec.Composition
	p.WidthCM = spec.WidthCM
	p.GSM = spec.GSM
	p.Color = spec.Color
	p.PricePerMeter = spec.PricePerMeter
	return nil
}

// AdjustStock adds delta meters (negative to remove). Stock never goes below zero.
func (p *Product) AdjustStock(delta decimal.Decimal) error {
	next := p.StockMeters.Add(delta)
	if next.IsNegative() {
		return shared.WrapDomainError(shared.ErrInsufficientStock.Code,
			fmt.Sprintf("Insufficient stock for %s: have %s m, need %s m", p.SKU, p.StockMeters.String(), delta.Neg().String()),
			shared.ErrInsufficientStock)
	}
	p.StockMeters = next
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Deactivate hides the product from ordering
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Activate makes the product orderable again
func (p *Product) Activate() {
	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// IsActive returns true if the product can be ordered
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// ProductFilter defines filtering options for product queries
type ProductFilter struct {
	shared.Filter
	Status *ProductStatus
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, error)
	Count(ctx context.Context, filter ProductFilter) (int64, error)
	Create(ctx context.Context, product *Product) error
	// SaveWithLock returns shared.ErrPersistenceConflict on a version mismatch
	SaveWithLock(ctx context.Context, product *Product) error
}
