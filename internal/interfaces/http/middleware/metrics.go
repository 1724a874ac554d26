package middleware

import (
	"strconv"
	"time"

	"github.com/fabrictrade/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var latencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

type httpMetrics struct {
	requests *telemetry.Counter
	failures *telemetry.Counter
	latency  *telemetry.Histogram
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	var (
		m   httpMetrics
		err error
	)
	if m.requests, err = telemetry.NewCounter(meter, "http_server_request_total", "HTTP requests served", "{request}"); err != nil {
		return nil, err
	}
	if m.failures, err = telemetry.NewCounter(meter, "api_error_total", "API responses carrying an error code", "{response}"); err != nil {
		return nil, err
	}
	m.latency, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency",
		Unit:        "s",
		Buckets:     latencyBuckets,
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Metrics records request count and latency per route, method and status.
// Responses with an error code set by SetErrorCode are also counted per code,
// so a spike in PERSISTENCE_CONFLICT is visible without reading logs.
func Metrics(meter metric.Meter) (gin.HandlerFunc, error) {
	m, err := newHTTPMetrics(meter)
	if err != nil {
		return nil, err
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start).Seconds()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		routeAttr := attribute.String("http.route", route)
		attrs := []attribute.KeyValue{
			routeAttr,
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.status_code", strconv.Itoa(c.Writer.Status())),
		}
		ctx := c.Request.Context()
		m.requests.Inc(ctx, attrs...)
		m.latency.Record(ctx, elapsed, attrs...)
		if code := c.GetString(ErrorCodeKey); code != "" {
			m.failures.Inc(ctx, routeAttr, attribute.String("error.code", code))
		}
	}, nil
}
