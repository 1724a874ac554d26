package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	userIDKey
)

// WithContext stores a logger in ctx
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in ctx, or a no-op logger.
// Trace and span IDs from an active span are attached on the way out.
func FromContext(ctx context.Context) *zap.Logger {
	return FromContextOr(ctx, zap.NewNop())
}

// FromContextOr is FromContext with a caller-chosen fallback for contexts without a logger
func FromContextOr(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if ctx == nil {
		return fallback
	}
	l, ok := ctx.Value(loggerKey).(*zap.Logger)
	if !ok || l == nil {
		l = fallback
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		l = l.With(
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	return l
}

// WithRequestID stores the request ID in ctx
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the request ID stored in ctx
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithUserID stores the authenticated user ID in ctx
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID returns the authenticated user ID stored in ctx
func GetUserID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// ContextLogger is a thin wrapper that resolves the request-scoped logger lazily.
type ContextLogger struct {
	ctx context.Context
}

// L returns a ContextLogger for ctx
func L(ctx context.Context) ContextLogger {
	return ContextLogger{ctx: ctx}
}

func (c ContextLogger) logger() *zap.Logger {
	l := FromContext(c.ctx)
	if uid := GetUserID(c.ctx); uid != "" {
		l = l.With(zap.String("user_id", uid))
	}
	return l
}

func (c ContextLogger) Debug(msg string, fields ...zap.Field) { c.logger().Debug(msg, fields...) }
func (c ContextLogger) Info(msg string, fields ...zap.Field)  { c.logger().Info(msg, fields...) }
func (c ContextLogger) Warn(msg string, fields ...zap.Field)  { c.logger().Warn(msg, fields...) }
func (c ContextLogger) Error(msg string, fields ...zap.Field) { c.logger().Error(msg, fields...) }

// With returns the underlying zap logger with extra fields
func (c ContextLogger) With(fields ...zap.Field) *zap.Logger {
	return c.logger().With(fields...)
}
