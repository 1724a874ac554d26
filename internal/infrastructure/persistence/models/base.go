package models

import (
	"time"

	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Row carries the identity and timestamps every table has
type Row struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns an ID to rows inserted without one
func (r *Row) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r Row) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

func rowOf(e shared.BaseEntity) Row {
	return Row{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
}

// VersionedRow adds the optimistic lock column of aggregate tables.
// Pending domain events live only in memory and have no column.
type VersionedRow struct {
	Row
	Version int `gorm:"not null;default:1"`
}

func (r VersionedRow) root() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: r.entity(), Version: r.Version}
}

func versionedRowOf(a shared.BaseAggregateRoot) VersionedRow {
	return VersionedRow{Row: rowOf(a.BaseEntity), Version: a.Version}
}

// All lists the models in foreign key order, for AutoMigrate in tests
func All() []any {
	return []any{
		&UserModel{},
		&CustomerModel{},
		&ProductModel{},
		&OrderModel{},
		&OrderLineModel{},
		&BillModel{},
		&PaymentModel{},
		&PaymentRequestModel{},
	}
}
