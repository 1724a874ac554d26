package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	appshared "github.com/fabrictrade/backend/internal/application/shared"
	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope_CommitsTogether(t *testing.T) {
	db := setupTestDB(t)
	bills := NewGormBillRepository(db)
	payments := NewGormPaymentRepository(db)
	ctx := context.Background()
	b := seedBill(t, bills, "BILL-2025-00001", uuid.New(), "100", time.Now().UTC())

	scope := NewGormTransactionScope(db)
	err := scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		bill, err := repos.BillRepo().FindByID(ctx, b.ID)
		if err != nil {
			return err
		}
		p, err := billing.NewPayment(bill.ID, bill.CustomerID, dec("40"), billing.PaymentMethodCash, "", "")
		if err != nil {
			return err
		}
		if err := repos.PaymentRepo().Create(ctx, p); err != nil {
			return err
		}
		if err := bill.ApplyPayment(p.Amount); err != nil {
			return err
		}
		return repos.BillRepo().SaveWithLock(ctx, bill)
	})
	require.NoError(t, err)

	stored, err := bills.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, stored.PaidAmount.Equal(dec("40")))

	sum, err := payments.SumByBill(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(stored.PaidAmount), "paid_amount matches the payment rows")
}

func TestGormTransactionScope_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	bills := NewGormBillRepository(db)
	payments := NewGormPaymentRepository(db)
	ctx := context.Background()
	b := seedBill(t, bills, "BILL-2025-00001", uuid.New(), "100", time.Now().UTC())
	boom := errors.New("second bill write failed")

	err := NewGormTransactionScope(db).Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		bill, err := repos.BillRepo().FindByID(ctx, b.ID)
		if err != nil {
			return err
		}
		p, _ := billing.NewPayment(bill.ID, bill.CustomerID, dec("100"), billing.PaymentMethodUPI, "UTR9", "")
		if err := repos.PaymentRepo().Create(ctx, p); err != nil {
			return err
		}
		_ = bill.ApplyPayment(p.Amount)
		if err := repos.BillRepo().SaveWithLock(ctx, bill); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := bills.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, stored.PaidAmount.IsZero())
	assert.Equal(t, billing.BillStatusUnpaid, stored.Status)
	assert.Equal(t, 1, stored.Version)

	rows, err := payments.FindByBill(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
