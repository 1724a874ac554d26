package persistence

import (
	"context"
	"testing"

	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/fabrictrade/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T, number string, customerID uuid.UUID) *trade.Order {
	t.Helper()
	o, err := trade.NewOrder(number, customerID, dec("5"), "")
	require.NoError(t, err)
	require.NoError(t, o.AddLine(uuid.New(), "CTN-60", "Cotton poplin", dec("12.5"), dec("180")))
	require.NoError(t, o.AddLine(uuid.New(), "LIN-40", "Linen", dec("3"), dec("420")))
	return o
}

func TestGormOrderRepository(t *testing.T) {
	repo := NewGormOrderRepository(setupTestDB(t))
	ctx := context.Background()
	customerID := uuid.New()

	o := newTestOrder(t, "ORD-2025-00001", customerID)
	require.NoError(t, repo.Create(ctx, o))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Len(t, found.Lines, 2)
	assert.True(t, found.TotalAmount.Equal(o.TotalAmount))

	billID := uuid.New()
	found.AttachBill(billID)
	stale := *found
	require.NoError(t, found.Advance(trade.OrderStatusShipped))
	require.NoError(t, repo.SaveWithLock(ctx, found))

	reloaded, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusShipped, reloaded.Status)
	require.NotNil(t, reloaded.BillID)
	assert.Equal(t, billID, *reloaded.BillID)
	assert.Len(t, reloaded.Lines, 2, "header update leaves lines alone")

	require.NoError(t, stale.Advance(trade.OrderStatusShipped))
	err = repo.SaveWithLock(ctx, &stale)
	assert.ErrorIs(t, err, shared.ErrPersistenceConflict)

	list, err := repo.FindAll(ctx, trade.OrderFilter{Filter: shared.DefaultFilter(), CustomerID: &customerID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Lines, 2)
}
