package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateRange is a half-open [From, To) window
type DateRange struct {
	From time.Time
	To   time.Time
}

// SalesSummary aggregates billing and collections over a date range
type SalesSummary struct {
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	OrderCount  int64           `json:"order_count"`
	BillCount   int64           `json:"bill_count"`
	Revenue     decimal.Decimal `json:"revenue"`     // sum of bill totals issued in range
	Collected   decimal.Decimal `json:"collected"`   // sum of payments received in range
	Outstanding decimal.Decimal `json:"outstanding"` // balance due on bills issued in range
	MetersSold  decimal.Decimal `json:"meters_sold"`
}

// ProductSales is one row of the top-products ranking
type ProductSales struct {
	ProductID   uuid.UUID       `json:"product_id"`
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	Meters      decimal.Decimal `json:"meters"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// AgingBucket labels
const (
	AgingCurrent = "0-30"
	Aging31To60  = "31-60"
	Aging61To100 = "61-100"
	AgingOverdue = "100+"
)

// BucketFor returns the aging bucket for a bill of the given age in days
func BucketFor(ageDays int) string {
	switch {
	case ageDays <= 30:
		return AgingCurrent
	case ageDays <= 60:
		return Aging31To60
	case ageDays <= 100:
		return Aging61To100
	default:
		return AgingOverdue
	}
}

// BucketNames returns bucket labels in display order
func BucketNames() []string {
	return []string{AgingCurrent, Aging31To60, Aging61To100, AgingOverdue}
}

// CustomerAging is the receivables aging line for one customer
type CustomerAging struct {
	CustomerID       uuid.UUID                  `json:"customer_id"`
	CustomerCode     string                     `json:"customer_code"`
	CustomerName     string                     `json:"customer_name"`
	Buckets          map[string]decimal.Decimal `json:"buckets"`
	TotalOutstanding decimal.Decimal            `json:"total_outstanding"`
	AdvisoryInterest decimal.Decimal            `json:"advisory_interest"`
	OldestBillDays   int                        `json:"oldest_bill_days"`
}

// Repository runs read-only aggregate queries
type Repository interface {
	SalesSummary(ctx context.Context, r DateRange) (*SalesSummary, error)
	TopProducts(ctx context.Context, r DateRange, limit int) ([]ProductSales, error)
}
