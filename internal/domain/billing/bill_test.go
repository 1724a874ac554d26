package billing

import (
	"testing"

	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBill(t *testing.T, subtotal, tax string) *Bill {
	t.Helper()
	b, err := NewBill("BILL-TEST-0001", uuid.New(), nil, dec(subtotal), dec(tax), "")
	require.NoError(t, err)
	return b
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name  string
		paid  string
		total string
		want  BillStatus
	}{
		{"nothing paid", "0", "100", BillStatusUnpaid},
		{"some paid", "40", "100", BillStatusPartial},
		{"fully paid", "100", "100", BillStatusPaid},
		{"overpaid still paid", "120", "100", BillStatusPaid},
		{"fraction short", "99.99", "100", BillStatusPartial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(dec(tt.paid), dec(tt.total))
			assert.Equal(t, tt.want, got)
			// same inputs, same answer
			assert.Equal(t, got, DeriveStatus(dec(tt.paid), dec(tt.total)))
		})
	}
}

func TestBalanceDue(t *testing.T) {
	assert.True(t, BalanceDue(dec("100"), dec("40")).Equal(dec("60")))
	assert.True(t, BalanceDue(dec("100"), dec("150")).IsZero())
}

func TestBillStatus_IsValid(t *testing.T) {
	assert.True(t, BillStatusUnpaid.IsValid())
	assert.True(t, BillStatusPartial.IsValid())
	assert.True(t, BillStatusPaid.IsValid())
	assert.False(t, BillStatus("void").IsValid())
}

func TestNewBill(t *testing.T) {
	t.Run("total is subtotal plus tax", func(t *testing.T) {
		b := newTestBill(t, "1000", "50")
		assert.True(t, b.TotalAmount.Equal(dec("1050")))
		assert.True(t, b.BalanceDue.Equal(dec("1050")))
		assert.True(t, b.PaidAmount.IsZero())
		assert.Equal(t, BillStatusUnpaid, b.Status)
		assert.Equal(t, 1, b.Version)
		require.Len(t, b.GetDomainEvents(), 1)
		assert.Equal(t, "BillIssued", b.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := NewBill("", uuid.New(), nil, dec("1"), decimal.Zero, "")
		assert.Error(t, err)

		_, err = NewBill("B-1", uuid.Nil, nil, dec("1"), decimal.Zero, "")
		assert.Error(t, err)

		_, err = NewBill("B-1", uuid.New(), nil, decimal.Zero, decimal.Zero, "")
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)

		_, err = NewBill("B-1", uuid.New(), nil, dec("10"), dec("-1"), "")
		assert.Error(t, err)
	})
}

func TestBill_ApplyPayment(t *testing.T) {
	t.Run("exact payment settles the bill", func(t *testing.T) {
		b := newTestBill(t, "100", "0")
		require.NoError(t, b.ApplyPayment(dec("100")))
		assert.Equal(t, BillStatusPaid, b.Status)
		assert.True(t, b.BalanceDue.IsZero())
		assert.NotNil(t, b.PaidAt)
		assert.Equal(t, 2, b.Version)
	})

	t.Run("partial payment", func(t *testing.T) {
		b := newTestBill(t, "100", "0")
		require.NoError(t, b.ApplyPayment(dec("40")))
		assert.Equal(t, BillStatusPartial, b.Status)
		assert.True(t, b.BalanceDue.Equal(dec("60")))
		assert.Nil(t, b.PaidAt)
	})

	t.Run("paid amount only grows", func(t *testing.T) {
		b := newTestBill(t, "100", "0")
		require.NoError(t, b.ApplyPayment(dec("30")))
		require.NoError(t, b.ApplyPayment(dec("30")))
		assert.True(t, b.PaidAmount.Equal(dec("60")))

		assert.ErrorIs(t, b.ApplyPayment(dec("-10")), shared.ErrInvalidAmount)
		assert.ErrorIs(t, b.ApplyPayment(decimal.Zero), shared.ErrInvalidAmount)
		assert.True(t, b.PaidAmount.Equal(dec("60")))
	})

	t.Run("cannot exceed balance", func(t *testing.T) {
		b := newTestBill(t, "100", "0")
		err := b.ApplyPayment(dec("100.01"))
		require.Error(t, err)
		assert.Equal(t, "EXCEEDS_OUTSTANDING", shared.CodeOf(err))
		assert.True(t, b.PaidAmount.IsZero())
	})

	t.Run("raises payment event", func(t *testing.T) {
		b := newTestBill(t, "100", "0")
		b.ClearDomainEvents()
		require.NoError(t, b.ApplyPayment(dec("25")))
		events := b.GetDomainEvents()
		require.Len(t, events, 1)
		ev, ok := events[0].(*BillPaymentAppliedEvent)
		require.True(t, ok)
		assert.True(t, ev.AmountApplied.Equal(dec("25")))
		assert.Equal(t, BillStatusPartial, ev.Status)
	})
}

func TestBill_Outstanding(t *testing.T) {
	b := newTestBill(t, "70", "0")
	o := b.Outstanding()
	assert.Equal(t, b.ID, o.BillID)
	assert.True(t, o.BalanceDue.Equal(dec("70")))
	assert.Equal(t, b.CreatedAt, o.CreatedAt)
	assert.True(t, b.IsOutstanding())
}

func TestNewPayment(t *testing.T) {
	billID, customerID := uuid.New(), uuid.New()

	p, err := NewPayment(billID, customerID, dec("12.50"), PaymentMethodUPI, "UTR123", "")
	require.NoError(t, err)
	assert.Equal(t, billID, p.BillID)
	assert.True(t, p.Amount.Equal(dec("12.50")))

	_, err = NewPayment(billID, customerID, decimal.Zero, PaymentMethodCash, "", "")
	assert.ErrorIs(t, err, shared.ErrInvalidAmount)

	_, err = NewPayment(billID, customerID, dec("1"), PaymentMethod("barter"), "", "")
	assert.Error(t, err)

	_, err = NewPayment(uuid.Nil, customerID, dec("1"), PaymentMethodCash, "", "")
	assert.Error(t, err)
}

func TestSumPayments(t *testing.T) {
	ps := []Payment{{Amount: dec("10.10")}, {Amount: dec("0.20")}, {Amount: dec("5")}}
	assert.True(t, SumPayments(ps).Equal(dec("15.30")))
	assert.True(t, SumPayments(nil).IsZero())
}
