package printing

import (
	"testing"
	"time"

	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInvoice() InvoiceData {
	return InvoiceData{
		CompanyName:    "Fabric Trade Co",
		CompanyAddress: "12 Mill Road, Surat",
		Currency:       "INR",
		BillNumber:     "BILL-20261019-0001",
		IssuedAt:       time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		OrderNumber:    "ORD-20261019-0001",
		Status:         "partial",
		CustomerCode:   "ST-001",
		CustomerName:   "Shree <Textiles>",
		GSTIN:          "24ABCDE1234F1Z5",
		Lines: []InvoiceLine{
			{SKU: "SLK-01", Description: "Mulberry Silk", Meters: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(850), Amount: decimal.NewFromInt(8500)},
		},
		Subtotal:   decimal.NewFromInt(8500),
		TaxAmount:  decimal.NewFromInt(425),
		Total:      decimal.NewFromInt(8925),
		Paid:       decimal.NewFromInt(1000),
		BalanceDue: decimal.NewFromInt(7925),
		Payments: []InvoicePayment{
			{ReceivedAt: time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), Method: "bank_transfer", Reference: "UTR-1", Amount: decimal.NewFromInt(1000)},
		},
	}
}

func TestTemplateEngine_RenderInvoice(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	t.Run("prints lines, totals and payments", func(t *testing.T) {
		html, err := engine.RenderInvoice(sampleInvoice())
		require.NoError(t, err)

		assert.Contains(t, html, "BILL-20261019-0001")
		assert.Contains(t, html, "19 Oct 2026")
		assert.Contains(t, html, "8,925.00")
		assert.Contains(t, html, "7,925.00")
		assert.Contains(t, html, "Bank Transfer")
		assert.Contains(t, html, "Partial")
		assert.Contains(t, html, "Shree &lt;Textiles&gt;", "customer text is escaped")
		assert.NotContains(t, html, "Interest of")
	})

	t.Run("overdue bills carry the advisory note", func(t *testing.T) {
		data := sampleInvoice()
		data.Interest = billing.CalculateOverdueInterest(decimal.NewFromInt(1000),
			time.Now().Add(-115*24*time.Hour), time.Now(), billing.BillStatusUnpaid)

		html, err := engine.RenderInvoice(data)
		require.NoError(t, err)
		assert.Contains(t, html, "100-day credit period")
		assert.Contains(t, html, "Interest of 3%")
		assert.Contains(t, html, "1,030.00")
	})

	t.Run("offline bill without lines", func(t *testing.T) {
		data := sampleInvoice()
		data.Lines = nil
		data.Notes = "Carried over from ledger book 7"

		html, err := engine.RenderInvoice(data)
		require.NoError(t, err)
		assert.Contains(t, html, "Carried over from ledger book 7")
	})
}
