package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/fabrictrade/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormBillRepository_CreateAndFind(t *testing.T) {
	repo := NewGormBillRepository(setupTestDB(t))
	ctx := context.Background()
	customerID := uuid.New()

	b := seedBill(t, repo, "BILL-2025-00001", customerID, "1050", time.Now().UTC())

	found, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "BILL-2025-00001", found.BillNumber)
	assert.True(t, found.TotalAmount.Equal(dec("1050")))
	assert.True(t, found.BalanceDue.Equal(dec("1050")))
	assert.Equal(t, billing.BillStatusUnpaid, found.Status)
	assert.Equal(t, 1, found.Version)

	missing, err := repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGormBillRepository_FindOutstandingByCustomer(t *testing.T) {
	repo := NewGormBillRepository(setupTestDB(t))
	ctx := context.Background()
	customerID := uuid.New()
	day := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	newer := seedBill(t, repo, "BILL-2025-00003", customerID, "30", day.AddDate(0, 0, 2))
	older := seedBill(t, repo, "BILL-2025-00001", customerID, "10", day)
	settled := seedBill(t, repo, "BILL-2025-00002", customerID, "20", day.AddDate(0, 0, 1))
	seedBill(t, repo, "BILL-2025-00004", uuid.New(), "99", day)

	require.NoError(t, settled.ApplyPayment(dec("20")))
	require.NoError(t, repo.SaveWithLock(ctx, settled))

	bills, err := repo.FindOutstandingByCustomer(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, older.ID, bills[0].ID)
	assert.Equal(t, newer.ID, bills[1].ID)

	total, err := repo.SumOutstandingByCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("40")), "got %s", total)

	none, err := repo.SumOutstandingByCustomer(ctx, uuid.New())
	require.NoError(t, err)
	assert.True(t, none.IsZero())

	all, err := repo.FindOutstanding(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGormBillRepository_SaveWithLock(t *testing.T) {
	repo := NewGormBillRepository(setupTestDB(t))
	ctx := context.Background()
	b := seedBill(t, repo, "BILL-2025-00001", uuid.New(), "100", time.Now().UTC())

	first, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)

	require.NoError(t, first.ApplyPayment(dec("60")))
	require.NoError(t, repo.SaveWithLock(ctx, first))

	require.NoError(t, second.ApplyPayment(dec("60")))
	err = repo.SaveWithLock(ctx, second)
	assert.ErrorIs(t, err, shared.ErrPersistenceConflict)

	stored, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
	assert.True(t, stored.PaidAmount.Equal(dec("60")))
	assert.True(t, stored.BalanceDue.Equal(dec("40")))
	assert.Equal(t, billing.BillStatusPartial, stored.Status)
}

func TestGormBillRepository_SaveWithLock_Postgres(t *testing.T) {
	db := testutil.NewMockDB(t)
	repo := NewGormBillRepository(db.DB)

	b, err := billing.NewBill("BILL-2025-00001", uuid.New(), nil, dec("100"), decimal.Zero, "")
	require.NoError(t, err)
	require.NoError(t, b.ApplyPayment(dec("10")))

	db.Mock.ExpectExec(`UPDATE "bills" SET .*"version"=.*WHERE .*version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.SaveWithLock(context.Background(), b)
	assert.ErrorIs(t, err, shared.ErrPersistenceConflict)
	db.ExpectationsWereMet(t)
}

func TestGormBillRepository_GenerateBillNumber(t *testing.T) {
	repo := NewGormBillRepository(setupTestDB(t))
	ctx := context.Background()
	year := time.Now().Year()

	first, err := repo.GenerateBillNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("BILL-%d-00001", year), first)

	seedBill(t, repo, first, uuid.New(), "10", time.Now().UTC())

	next, err := repo.GenerateBillNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("BILL-%d-00002", year), next)
}

func TestGormBillRepository_DuplicateNumberIsConflict(t *testing.T) {
	repo := NewGormBillRepository(setupTestDB(t))
	seedBill(t, repo, "BILL-2025-00001", uuid.New(), "10", time.Now().UTC())

	dup, err := billing.NewBill("BILL-2025-00001", uuid.New(), nil, dec("5"), decimal.Zero, "")
	require.NoError(t, err)
	err = repo.Create(context.Background(), dup)
	assert.ErrorIs(t, err, shared.ErrPersistenceConflict)
}

func TestGormBillRepository_FindAll(t *testing.T) {
	repo := NewGormBillRepository(setupTestDB(t))
	ctx := context.Background()
	customerID := uuid.New()
	for i := 1; i <= 3; i++ {
		seedBill(t, repo, fmt.Sprintf("BILL-2025-%05d", i), customerID, "10", time.Now().UTC().Add(time.Duration(i)*time.Minute))
	}
	seedBill(t, repo, "BILL-2025-00009", uuid.New(), "10", time.Now().UTC())

	filter := billing.BillFilter{Filter: shared.Filter{Page: 1, PageSize: 2}, CustomerID: &customerID}
	bills, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, bills, 2)
	assert.Equal(t, "BILL-2025-00003", bills[0].BillNumber, "newest first by default")

	count, err := repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
