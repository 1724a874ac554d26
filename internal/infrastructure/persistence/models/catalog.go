package models

import (
	"github.com/fabrictrade/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for a fabric SKU.
type ProductModel struct {
	VersionedRow
	SKU           string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name          string                `gorm:"type:varchar(200);not null"`
	Composition   string                `gorm:"type:varchar(200)"`
	WidthCM       int                   `gorm:"not null;default:0"`
	GSM           int                   `gorm:"not null;default:0"`
	Color         string                `gorm:"type:varchar(50)"`
	PricePerMeter decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	StockMeters   decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	Status        catalog.ProductStatus `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.root(),
		SKU:               m.SKU,
		Name:              m.Name,
		Composition:       m.Composition,
		WidthCM:           m.WidthCM,
		GSM:               m.GSM,
		Color:             m.Color,
		PricePerMeter:     m.PricePerMeter,
		StockMeters:       m.StockMeters,
		Status:            m.Status,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		SKU:           p.SKU,
		Name:          p.Name,
		Composition:   p.Composition,
		WidthCM:       p.WidthCM,
		GSM:           p.GSM,
		Color:         p.Color,
		PricePerMeter: p.PricePerMeter,
		StockMeters:   p.StockMeters,
		Status:        p.Status,
	}
	m.VersionedRow = versionedRowOf(p.BaseAggregateRoot)
	return m
}
