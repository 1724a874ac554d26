package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of the service spans
const TracerName = "fabrictrade-backend"

// Attribute keys used on service spans
const (
	SpanAttrCustomerID = "customer.id"
	SpanAttrBillID     = "bill.id"
	SpanAttrOrderID    = "order.id"
	SpanAttrAmount     = "amount"
	SpanAttrMode       = "payment.mode"
	SpanAttrAttempt    = "attempt"
)

// StartServiceSpan starts "<area>.<operation>", for example "payment.record".
// The tracer is looked up on each call so tests can swap the global provider.
func StartServiceSpan(ctx context.Context, area, operation string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, area+"."+operation, trace.WithSpanKind(trace.SpanKindInternal))
}

// SetAttributes takes alternating keys and values. Pairs whose key is not a string are dropped.
func SetAttributes(span trace.Span, kv ...any) {
	if span != nil {
		span.SetAttributes(attrs(kv)...)
	}
}

// AddEvent adds a named event with alternating key/value attributes
func AddEvent(span trace.Span, name string, kv ...any) {
	if span != nil {
		span.AddEvent(name, trace.WithAttributes(attrs(kv)...))
	}
}

// RecordError adds err as an exception event and fails the span
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func attrs(kv []any) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			out = append(out, attr(key, kv[i+1]))
		}
	}
	return out
}

func attr(key string, v any) attribute.KeyValue {
	switch v := v.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case decimal.Decimal:
		return attribute.String(key, v.StringFixed(2))
	case uuid.UUID:
		return attribute.String(key, v.String())
	case time.Duration:
		return attribute.Int64(key, v.Milliseconds())
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	}
	return attribute.String(key, fmt.Sprint(v))
}
