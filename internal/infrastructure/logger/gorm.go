package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger sends GORM statements to zap with the request ID and trace IDs
// of the calling context attached.
type GormLogger struct {
	base  *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

func NewGormLogger(base *zap.Logger, level gormlogger.LogLevel, slow time.Duration) *GormLogger {
	return &GormLogger{base: base.Named("sql"), level: level, slow: slow}
}

func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *g
	next.level = level
	return &next
}

func (g *GormLogger) scoped(ctx context.Context) *zap.Logger {
	l := FromContextOr(ctx, g.base)
	if id := GetRequestID(ctx); id != "" {
		l = l.With(zap.String("request_id", id))
	}
	return l
}

func (g *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if g.level >= gormlogger.Info {
		g.scoped(ctx).Sugar().Infof(msg, data...)
	}
}

func (g *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if g.level >= gormlogger.Warn {
		g.scoped(ctx).Sugar().Warnf(msg, data...)
	}
}

func (g *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if g.level >= gormlogger.Error {
		g.scoped(ctx).Sugar().Errorf(msg, data...)
	}
}

// Trace logs failed statements at error, slow ones at warn and the rest at debug.
// Record-not-found is a normal miss for the repositories and is never logged.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	failed := err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound)
	took := time.Since(begin)
	isSlow := g.slow > 0 && took > g.slow

	switch {
	case failed && g.level >= gormlogger.Error:
	case isSlow && g.level >= gormlogger.Warn:
	case err == nil && g.level >= gormlogger.Info:
	default:
		return
	}

	stmt, rows := fc()
	fields := []zap.Field{
		zap.String("op", statementKind(stmt)),
		zap.Duration("took", took),
		zap.Int64("rows", rows),
		zap.String("sql", stmt),
	}
	l := g.scoped(ctx)
	switch {
	case failed:
		l.Error("query failed", append(fields, zap.Error(err))...)
	case isSlow:
		l.Warn("slow query", append(fields, zap.Duration("threshold", g.slow))...)
	default:
		l.Debug("query", fields...)
	}
}

// statementKind returns the leading SQL keyword in lower case
func statementKind(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if i := strings.IndexAny(stmt, " \n\t("); i > 0 {
		stmt = stmt[:i]
	}
	return strings.ToLower(stmt)
}

// GormLevel maps the app log level onto GORM's. Statements are only traced at debug.
func GormLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "debug":
		return gormlogger.Info
	}
	return gormlogger.Warn
}
