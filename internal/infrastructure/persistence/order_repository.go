package persistence

import (
	"context"

	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/fabrictrade/backend/internal/domain/trade"
	"github.com/fabrictrade/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its lines
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	return first(r.db.WithContext(ctx).Preload("Lines").Where("id = ?", id), (*models.OrderModel).ToDomain)
}

// FindAll finds orders matching the filter, lines included
func (r *GormOrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]trade.Order, error) {
	var rows []models.OrderModel
	query := applyPaging(r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter), filter.Filter, OrderSortFields)
	if err := query.Preload("Lines").Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]trade.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter trade.OrderFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter).Count(&count).Error
	return count, err
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter trade.OrderFilter) *gorm.DB {
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
		query = query.Where("order_number LIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// Create inserts the order and its lines
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	return translateWriteError(r.db.WithContext(ctx).Create(models.OrderModelFromDomain(order)).Error)
}

// SaveWithLock updates the order header. Lines are immutable once placed.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	model.Lines = nil
	result := r.db.WithContext(ctx).
		Model(model).
		Where("version = ?", order.Version-1).
		Select("status", "bill_id", "notes", "version", "updated_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrPersistenceConflict
	}
	return nil
}

// GenerateOrderNumber generates the next order number.
// Format: ORD-YYYY-NNNNN (e.g., ORD-2025-00001)
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	return nextSequenceNumber(ctx, r.db, &models.OrderModel{}, "order_number", "ORD")
}

var _ trade.OrderRepository = (*GormOrderRepository)(nil)
