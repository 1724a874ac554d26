package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/fabrictrade/backend/internal/domain/report"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormReportRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	orders := NewGormOrderRepository(db)
	bills := NewGormBillRepository(db)
	payments := NewGormPaymentRepository(db)
	reports := NewGormReportRepository(db)

	customerID := uuid.New()
	o := newTestOrder(t, "ORD-2025-00001", customerID)
	require.NoError(t, orders.Create(ctx, o))

	b, err := billing.NewBill("BILL-2025-00001", customerID, &o.ID, o.Subtotal, o.TaxAmount, "")
	require.NoError(t, err)
	require.NoError(t, bills.Create(ctx, b))

	p, err := billing.NewPayment(b.ID, customerID, dec("1000"), billing.PaymentMethodCash, "", "")
	require.NoError(t, err)
	require.NoError(t, payments.Create(ctx, p))

	rng := report.DateRange{From: time.Now().Add(-time.Hour), To: time.Now().Add(time.Hour)}

	summary, err := reports.SalesSummary(ctx, rng)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.OrderCount)
	assert.Equal(t, int64(1), summary.BillCount)
	assert.True(t, summary.Revenue.Equal(o.TotalAmount), "revenue %s", summary.Revenue)
	assert.True(t, summary.Collected.Equal(decimal.NewFromInt(1000)))
	assert.True(t, summary.MetersSold.Equal(dec("15.5")), "meters %s", summary.MetersSold)

	top, err := reports.TopProducts(ctx, rng, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "CTN-60", top[0].SKU, "12.5m x 180 outranks 3m x 420")
	assert.True(t, top[0].Revenue.Equal(dec("2250")))

	empty, err := reports.SalesSummary(ctx, report.DateRange{From: rng.To, To: rng.To.Add(time.Hour)})
	require.NoError(t, err)
	assert.Zero(t, empty.OrderCount)
	assert.True(t, empty.Revenue.IsZero())
}
