package persistence

import (
	"context"
	"errors"

	"github.com/fabrictrade/backend/internal/domain/partner"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/fabrictrade/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRepository implements partner.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByCode finds a customer by code
func (r *GormCustomerRepository) FindByCode(ctx context.Context, code string) (*partner.Customer, error) {
	return r.findOne(ctx, "code = ?", code)
}

// FindByUserID finds the customer linked to a login account
func (r *GormCustomerRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*partner.Customer, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

func (r *GormCustomerRepository) findOne(ctx context.Context, cond string, arg any) (*partner.Customer, error) {
	return first(r.db.WithContext(ctx).Where(cond, arg), (*models.CustomerModel).ToDomain)
}

// FindAll finds customers matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	var rows []models.CustomerModel
	query := applyPaging(r.applySearch(r.db.WithContext(ctx).Model(&models.CustomerModel{}), filter), filter, CustomerSortFields)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	customers := make([]partner.Customer, len(rows))
	for i := range rows {
		customers[i] = *rows[i].ToDomain()
	}
	return customers, nil
}

// Count counts customers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applySearch(r.db.WithContext(ctx).Model(&models.CustomerModel{}), filter).Count(&count).Error
	return count, err
}

func (r *GormCustomerRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search == "" {
		return query
	}
	like := "%" + filter.Search + "%"
	return query.Where("code LIKE ? OR name LIKE ? OR email LIKE ?", like, like, like)
}

// Create inserts a new customer
func (r *GormCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	err := r.db.WithContext(ctx).Create(models.CustomerModelFromDomain(customer)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.WrapDomainError(shared.ErrAlreadyExists.Code, "A customer with this code already exists", err)
	}
	return err
}

// SaveWithLock saves a customer with optimistic locking (version check)
func (r *GormCustomerRepository) SaveWithLock(ctx context.Context, customer *partner.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("version = ?", customer.Version-1).
		Select("name", "contact_name", "email", "phone", "address", "gstin", "credit_limit", "user_id", "status", "version", "updated_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrPersistenceConflict
	}
	return nil
}

var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
