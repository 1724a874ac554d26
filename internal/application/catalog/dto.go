package catalog

import (
	"time"

	"github.com/fabrictrade/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to add a fabric to the catalog
type CreateProductRequest struct {
	SKU           string           `json:"sku" binding:"required,min=1,max=50"`
	Name          string           `json:"name" binding:"required,min=1,max=200"`
	Composition   string           `json:"composition" binding:"max=200"`
	WidthCM       int              `json:"width_cm" binding:"gte=0,lte=1000"`
	GSM           int              `json:"gsm" binding:"gte=0,lte=2000"`
	Color         string           `json:"color" binding:"max=50"`
	PricePerMeter decimal.Decimal  `json:"price_per_meter"`
	InitialStock  *decimal.Decimal `json:"initial_stock"`
}

// UpdateProductRequest represents a request to update a fabric
type UpdateProductRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=200"`
	Composition   string          `json:"composition" binding:"max=200"`
	WidthCM       int             `json:"width_cm" binding:"gte=0,lte=1000"`
	GSM           int             `json:"gsm" binding:"gte=0,lte=2000"`
	Color         string          `json:"color" binding:"max=50"`
	PricePerMeter decimal.Decimal `json:"price_per_meter"`
	Active        *bool           `json:"active"`
}

// AdjustStockRequest adds (positive) or removes (negative) meters of stock
type AdjustStockRequest struct {
	DeltaMeters decimal.Decimal `json:"delta_meters"`
	Reason      string          `json:"reason" binding:"max=200"`
}

// ProductListQuery holds product list query parameters
type ProductListQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
}

// ProductResponse represents a fabric in API responses
type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Composition   string          `json:"composition"`
	WidthCM       int             `json:"width_cm"`
	GSM           int             `json:"gsm"`
	Color         string          `json:"color"`
	PricePerMeter decimal.Decimal `json:"price_per_meter"`
	StockMeters   decimal.Decimal `json:"stock_meters"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// ToProductResponse converts a domain product to a response
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Composition:   p.Composition,
		WidthCM:       p.WidthCM,
		GSM:           p.GSM,
		Color:         p.Color,
		PricePerMeter: p.PricePerMeter,
		StockMeters:   p.StockMeters,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
}
