package persistence

import (
	"context"

	"github.com/fabrictrade/backend/internal/domain/payreq"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/fabrictrade/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRequestRepository implements payreq.Repository using GORM
type GormPaymentRequestRepository struct {
	db *gorm.DB
}

// NewGormPaymentRequestRepository creates a new GormPaymentRequestRepository
func NewGormPaymentRequestRepository(db *gorm.DB) *GormPaymentRequestRepository {
	return &GormPaymentRequestRepository{db: db}
}

// FindByID finds a payment request by ID
func (r *GormPaymentRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*payreq.PaymentRequest, error) {
	return first(r.db.WithContext(ctx).Where("id = ?", id), (*models.PaymentRequestModel).ToDomain)
}

// FindAll finds payment requests matching the filter
func (r *GormPaymentRequestRepository) FindAll(ctx context.Context, filter payreq.Filter) ([]payreq.PaymentRequest, error) {
	var rows []models.PaymentRequestModel
	query := applyPaging(r.applyFilter(r.db.WithContext(ctx).Model(&models.PaymentRequestModel{}), filter), filter.Filter, PaymentRequestSortFields)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	requests := make([]payreq.PaymentRequest, len(rows))
	for i := range rows {
		requests[i] = *rows[i].ToDomain()
	}
	return requests, nil
}

// Count counts payment requests matching the filter
func (r *GormPaymentRequestRepository) Count(ctx context.Context, filter payreq.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.PaymentRequestModel{}), filter).Count(&count).Error
	return count, err
}

func (r *GormPaymentRequestRepository) applyFilter(query *gorm.DB, filter payreq.Filter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

// Create inserts a new payment request
func (r *GormPaymentRequestRepository) Create(ctx context.Context, req *payreq.PaymentRequest) error {
	return r.db.WithContext(ctx).Create(models.PaymentRequestModelFromDomain(req)).Error
}

// SaveWithLock records the review outcome. A stale version means another reviewer acted first.
func (r *GormPaymentRequestRepository) SaveWithLock(ctx context.Context, req *payreq.PaymentRequest) error {
	model := models.PaymentRequestModelFromDomain(req)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("version = ?", req.Version-1).
		Select("status", "reviewed_by", "reviewed_at", "rejection_reason", "payment_ids", "version", "updated_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrPersistenceConflict
	}
	return nil
}

var _ payreq.Repository = (*GormPaymentRequestRepository)(nil)
