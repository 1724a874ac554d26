package persistence

import (
	"context"

	"github.com/fabrictrade/backend/internal/domain/report"
	"github.com/fabrictrade/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReportRepository runs the analytics aggregates
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

type billTotals struct {
	BillCount   int64
	Revenue     decimal.Decimal
	Outstanding decimal.Decimal
}

// SalesSummary aggregates orders, bills, and collections in the range
func (r *GormReportRepository) SalesSummary(ctx context.Context, rng report.DateRange) (*report.SalesSummary, error) {
	db := r.db.WithContext(ctx)
	summary := &report.SalesSummary{From: rng.From, To: rng.To}

	if err := db.Model(&models.OrderModel{}).
		Where("created_at >= ? AND created_at < ?", rng.From, rng.To).
		Count(&summary.OrderCount).Error; err != nil {
		return nil, err
	}

	var totals billTotals
	if err := db.Model(&models.BillModel{}).
		Select("COUNT(*) AS bill_count, COALESCE(SUM(total_amount), 0) AS revenue, COALESCE(SUM(balance_due), 0) AS outstanding").
		Where("created_at >= ? AND created_at < ?", rng.From, rng.To).
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	summary.BillCount = totals.BillCount
	summary.Revenue = totals.Revenue
	summary.Outstanding = totals.Outstanding

	if err := db.Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("created_at >= ? AND created_at < ?", rng.From, rng.To).
		Row().Scan(&summary.Collected); err != nil {
		return nil, err
	}

	if err := db.Table("order_lines").
		Joins("JOIN orders ON orders.id = order_lines.order_id").
		Select("COALESCE(SUM(order_lines.meters), 0)").
		Where("orders.created_at >= ? AND orders.created_at < ?", rng.From, rng.To).
		Row().Scan(&summary.MetersSold); err != nil {
		return nil, err
	}

	return summary, nil
}

// TopProducts ranks products by billed revenue in the range
func (r *GormReportRepository) TopProducts(ctx context.Context, rng report.DateRange, limit int) ([]report.ProductSales, error) {
	if limit <= 0 {
		limit = 10
	}
	rows := make([]report.ProductSales, 0, limit)
	err := r.db.WithContext(ctx).
		Table("order_lines").
		Joins("JOIN orders ON orders.id = order_lines.order_id").
		Select("order_lines.product_id, order_lines.sku, order_lines.product_name, "+
			"SUM(order_lines.meters) AS meters, SUM(order_lines.amount) AS revenue").
		Where("orders.created_at >= ? AND orders.created_at < ?", rng.From, rng.To).
		Group("order_lines.product_id, order_lines.sku, order_lines.product_name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

var _ report.Repository = (*GormReportRepository)(nil)
