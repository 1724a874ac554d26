package telemetry

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PaymentMetrics counts payment events by outcome.
// A nil *PaymentMetrics is valid and records nothing.
type PaymentMetrics struct {
	recorded  *Counter
	amount    *FloatCounter
	conflicts *Counter
	failures  *Counter
	billsHit  *Histogram
}

// NewPaymentMetrics registers the payment instruments on meter
func NewPaymentMetrics(meter metric.Meter) (*PaymentMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	recorded, err1 := NewCounter(meter, "payments_recorded_total", "Payment events committed", "{payment}")
	amount, err2 := NewFloatCounter(meter, "payment_amount_total", "Money applied to bills", "{currency}")
	conflicts, err3 := NewCounter(meter, "payment_conflicts_total", "Optimistic lock conflicts while recording payments", "{conflict}")
	failures, err4 := NewCounter(meter, "payment_failures_total", "Payment events rolled back", "{payment}")
	billsHit, err5 := NewHistogram(meter, HistogramOpts{
		Name:        "payment_bills_per_event",
		Description: "Bills touched by one payment event",
		Unit:        "{bill}",
		Buckets:     []float64{1, 2, 3, 5, 10, 25, 50},
	})
	if err := errors.Join(err1, err2, err3, err4, err5); err != nil {
		return nil, err
	}
	return &PaymentMetrics{
		recorded:  recorded,
		amount:    amount,
		conflicts: conflicts,
		failures:  failures,
		billsHit:  billsHit,
	}, nil
}

// RecordPayment counts a committed payment event
func (m *PaymentMetrics) RecordPayment(ctx context.Context, mode string, applied decimal.Decimal, billCount int) {
	if m == nil {
		return
	}
	attrs := attribute.String("mode", mode)
	m.recorded.Inc(ctx, attrs)
	m.amount.Add(ctx, applied.InexactFloat64(), attrs)
	m.billsHit.Record(ctx, float64(billCount), attrs)
}

// RecordConflict counts one lost optimistic-lock race
func (m *PaymentMetrics) RecordConflict(ctx context.Context, mode string) {
	if m == nil {
		return
	}
	m.conflicts.Inc(ctx, attribute.String("mode", mode))
}

// RecordFailure counts a rolled back payment event
func (m *PaymentMetrics) RecordFailure(ctx context.Context, mode, code string) {
	if m == nil {
		return
	}
	m.failures.Inc(ctx, attribute.String("mode", mode), attribute.String("code", code))
}
