package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormPaymentRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()
	billID, customerID := uuid.New(), uuid.New()
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, amount := range []string{"10.25", "4.75"} {
		p, err := billing.NewPayment(billID, customerID, dec(amount), billing.PaymentMethodBankTransfer, "NEFT1", "")
		require.NoError(t, err)
		p.Stamp(base.Add(time.Duration(i) * time.Hour))
		require.NoError(t, repo.Create(ctx, p))
	}
	other, _ := billing.NewPayment(uuid.New(), customerID, dec("99"), billing.PaymentMethodCash, "", "")
	require.NoError(t, repo.Create(ctx, other))

	rows, err := repo.FindByBill(ctx, billID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Amount.Equal(dec("10.25")))
	assert.Equal(t, billing.PaymentMethodBankTransfer, rows[0].Method)

	sum, err := repo.SumByBill(ctx, billID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(dec("15")), "got %s", sum)

	byCustomer, err := repo.FindAll(ctx, billing.PaymentFilter{Filter: shared.DefaultFilter(), CustomerID: &customerID})
	require.NoError(t, err)
	assert.Len(t, byCustomer, 3)
}
