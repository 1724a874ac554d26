package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects level, encoding and sink of the process logger
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	Output string // stdout, stderr or a file path

	// Service and Env are stamped on every entry when set
	Service string
	Env     string
}

// New builds the process logger. Console output is meant for a terminal and
// gets colored levels; json is what production ships to the collector.
func New(cfg Config) (*zap.Logger, error) {
	console := strings.EqualFold(cfg.Format, "console")

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "time"
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	enc.EncodeDuration = zapcore.MillisDurationEncoder
	if console {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	encoding := "json"
	if console {
		encoding = "console"
	}
	out := cfg.Output
	if out == "" {
		out = "stdout"
	}

	fields := map[string]any{}
	if cfg.Service != "" {
		fields["service"] = cfg.Service
	}
	if cfg.Env != "" {
		fields["env"] = cfg.Env
	}

	zc := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Encoding:         encoding,
		EncoderConfig:    enc,
		OutputPaths:      []string{out},
		ErrorOutputPaths: []string{"stderr"},
		InitialFields:    fields,
	}
	l, err := zc.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger for %s: %w", out, err)
	}
	return l, nil
}

// parseLevel falls back to info for anything zap does not know
func parseLevel(level string) zapcore.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
