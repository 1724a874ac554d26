package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorCodeKey holds the API error code a handler answered with
const ErrorCodeKey = "error_code"

// SetErrorCode records the error code of the response for spans and metrics.
// err, when not nil, is attached to the gin context as well.
func SetErrorCode(c *gin.Context, code string, err error) {
	c.Set(ErrorCodeKey, code)
	if err != nil {
		_ = c.Error(err)
	}
}

// Tracing starts a server span per request
func Tracing(serviceName string, opts ...otelgin.Option) gin.HandlerFunc {
	return otelgin.Middleware(serviceName, opts...)
}

// SpanEnricher must run inside Tracing. After the handler it tags the span
// with the route, caller and error code, and records handler errors as span events.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		span.SetAttributes(requestAttributes(c)...)
		for _, e := range c.Errors {
			span.RecordError(e.Err)
		}

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, c.GetString(ErrorCodeKey))
		}
	}
}

func requestAttributes(c *gin.Context) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 5)
	attrs = append(attrs, attribute.String("http.route", c.FullPath()))
	if id := c.GetString(RequestIDKey); id != "" {
		attrs = append(attrs, attribute.String("request_id", id))
	}
	if uid := GetJWTUserID(c); uid != "" {
		attrs = append(attrs, attribute.String("enduser.id", uid), attribute.String("enduser.role", GetJWTRole(c)))
	}
	if code := c.GetString(ErrorCodeKey); code != "" {
		attrs = append(attrs, attribute.String("error.code", code))
	}
	return attrs
}
