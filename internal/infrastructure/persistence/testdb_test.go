package persistence

import (
	"testing"
	"time"

	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/fabrictrade/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with every table migrated.
// A single connection keeps all statements on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedBill stores an unpaid bill for customerID issued at createdAt
func seedBill(t *testing.T, repo *GormBillRepository, number string, customerID uuid.UUID, total string, createdAt time.Time) *billing.Bill {
	t.Helper()
	b, err := billing.NewBill(number, customerID, nil, dec(total), decimal.Zero, "")
	require.NoError(t, err)
	b.CreatedAt = createdAt
	b.UpdatedAt = createdAt
	require.NoError(t, repo.Create(t.Context(), b))
	return b
}
