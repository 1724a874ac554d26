package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/fabrictrade/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormBillRepository implements billing.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// FindByID finds a bill by ID
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	return first(r.db.WithContext(ctx).Where("id = ?", id), (*models.BillModel).ToDomain)
}

// FindAll finds bills matching the filter
func (r *GormBillRepository) FindAll(ctx context.Context, filter billing.BillFilter) ([]billing.Bill, error) {
	var rows []models.BillModel
	query := applyPaging(r.applyFilter(r.db.WithContext(ctx).Model(&models.BillModel{}), filter), filter.Filter, BillSortFields)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return billsToDomain(rows), nil
}

// Count counts bills matching the filter
func (r *GormBillRepository) Count(ctx context.Context, filter billing.BillFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.BillModel{}), filter).Count(&count).Error
	return count, err
}

func (r *GormBillRepository) applyFilter(query *gorm.DB, filter billing.BillFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at < ?", *filter.ToDate)
	}
	if filter.Search != "" {
		query = query.Where("bill_number LIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// FindOutstandingByCustomer returns the customer's unpaid bills oldest first.
// id breaks created_at ties so allocation order is stable across reads.
func (r *GormBillRepository) FindOutstandingByCustomer(ctx context.Context, customerID uuid.UUID) ([]billing.Bill, error) {
	var rows []models.BillModel
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND balance_due > 0", customerID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return billsToDomain(rows), nil
}

// FindOutstanding returns every bill with a balance due, oldest first
func (r *GormBillRepository) FindOutstanding(ctx context.Context) ([]billing.Bill, error) {
	var rows []models.BillModel
	err := r.db.WithContext(ctx).
		Where("balance_due > 0").
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return billsToDomain(rows), nil
}

// SumOutstandingByCustomer returns the customer's total balance due
func (r *GormBillRepository) SumOutstandingByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.BillModel{}).
		Select("COALESCE(SUM(balance_due), 0)").
		Where("customer_id = ? AND balance_due > 0", customerID).
		Row().
		Scan(&total)
	return total, err
}

// Create inserts a new bill
func (r *GormBillRepository) Create(ctx context.Context, bill *billing.Bill) error {
	return translateWriteError(r.db.WithContext(ctx).Create(models.BillModelFromDomain(bill)).Error)
}

// SaveWithLock writes the payment columns only if nobody else has bumped the version.
func (r *GormBillRepository) SaveWithLock(ctx context.Context, bill *billing.Bill) error {
	model := models.BillModelFromDomain(bill)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("version = ?", bill.Version-1).
		Select("paid_amount", "balance_due", "status", "paid_at", "version", "updated_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrPersistenceConflict
	}
	return nil
}

// GenerateBillNumber generates the next bill number for the current year.
// Format: BILL-YYYY-NNNNN (e.g., BILL-2025-00042)
func (r *GormBillRepository) GenerateBillNumber(ctx context.Context) (string, error) {
	return nextSequenceNumber(ctx, r.db, &models.BillModel{}, "bill_number", "BILL")
}

// nextSequenceNumber reads the highest PREFIX-YYYY-NNNNN in column and returns the next one.
// Two concurrent callers can get the same number; the unique index rejects the loser
// with a retryable conflict.
func nextSequenceNumber(ctx context.Context, db *gorm.DB, model any, column, prefix string) (string, error) {
	yearPrefix := fmt.Sprintf("%s-%d-", prefix, time.Now().Year())

	var last string
	err := db.WithContext(ctx).
		Model(model).
		Select(column).
		Where(column+" LIKE ?", yearPrefix+"%").
		Order(column + " DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return "", err
	}

	next := 1
	if last != "" {
		var n int
		if _, scanErr := fmt.Sscanf(strings.TrimPrefix(last, yearPrefix), "%d", &n); scanErr == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%05d", yearPrefix, next), nil
}

func billsToDomain(rows []models.BillModel) []billing.Bill {
	bills := make([]billing.Bill, len(rows))
	for i := range rows {
		bills[i] = *rows[i].ToDomain()
	}
	return bills
}

var _ billing.BillRepository = (*GormBillRepository)(nil)
