package telemetry

import (
	"context"
	"runtime/pprof"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestBridge_DisabledKeepsBaseLogger(t *testing.T) {
	p := &Provider{logger: zap.NewNop()}
	base := zap.NewExample()

	assert.Same(t, base, p.Bridge(base, "fabrictrade", zapcore.InfoLevel))
	assert.False(t, p.ZapCore("fabrictrade", zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
}

func TestZapCore_FiltersBelowLevel(t *testing.T) {
	lp := sdklog.NewLoggerProvider()
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })
	p := &Provider{logger: zap.NewNop(), logs: lp}

	core := p.ZapCore("fabrictrade", zapcore.WarnLevel)
	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))

	child := core.With([]zapcore.Field{zap.String("k", "v")})
	assert.False(t, child.Enabled(zapcore.DebugLevel))

	bridged := p.Bridge(zap.NewNop(), "fabrictrade", zapcore.WarnLevel)
	assert.NotNil(t, bridged)
	bridged.Warn("forwarded")
}

func TestProfiler_Disabled(t *testing.T) {
	p, err := StartProfiler(ProfilerConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestProfiler_RequiresAddress(t *testing.T) {
	_, err := StartProfiler(ProfilerConfig{Enabled: true, ApplicationName: "fabrictrade"}, zap.NewNop())
	assert.Error(t, err)
}

func TestLabeled(t *testing.T) {
	ran := false
	Labeled(context.Background(), func(ctx context.Context) {
		ran = true
		mode, ok := pprof.Label(ctx, "payment_mode")
		assert.True(t, ok)
		assert.Equal(t, "bulk", mode)
	}, "payment_mode", "bulk")
	assert.True(t, ran)
}
