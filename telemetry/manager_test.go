package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/KOMKZ/go-yogan-ioc/logger"
	"github.com/KOMKZ/go-yogan-ioc/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_Disabled(t *testing.T) {
	log := logger.NewTestCtxLogger()
	m, err := NewManager(context.Background(), DefaultConfig(), log)
	require.NoError(t, err)

	assert.False(t, m.Enabled())
	assert.NotNil(t, m.TracerProvider())
	assert.NotNil(t, m.MeterProvider())
	assert.NoError(t, m.Shutdown(context.Background()))
	assert.True(t, log.HasLog("DEBUG", "telemetry disabled"))
}

func TestNewManager_StdoutExport(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Metrics.Enabled = true

	ctx := context.Background()
	m, err := NewManager(ctx, cfg, nil, WithWriter(&buf), WithGlobal(false))
	require.NoError(t, err)
	require.True(t, m.Enabled())

	_, span := m.TracerProvider().Tracer("test").Start(ctx, "bean.method")
	span.End()

	counter, err := m.MeterProvider().Meter("test").Int64Counter("ioc.test.calls")
	require.NoError(t, err)
	counter.Add(ctx, 2)

	require.NoError(t, m.Shutdown(ctx))
	out := buf.String()
	assert.Contains(t, out, "bean.method")
	assert.Contains(t, out, "ioc.test.calls")
	assert.Contains(t, out, "yogan-ioc")
}

func TestNewManager_NoopExporter(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Exporter = "noop"

	m, err := NewManager(context.Background(), cfg, nil, WithWriter(&buf), WithGlobal(false))
	require.NoError(t, err)
	_, span := m.TracerProvider().Tracer("test").Start(context.Background(), "ignored")
	span.End()
	require.NoError(t, m.Shutdown(context.Background()))
	assert.Empty(t, buf.String())
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, validator.Validate(cfg))

	cfg.Exporter = "otlp"
	cfg.Sampler.Ratio = 2
	err := validator.Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, validator.ErrValidation)
}

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	assert.Equal(t, "yogan-ioc", cfg.ServiceName)
	assert.Equal(t, "stdout", cfg.Exporter)
	assert.Equal(t, "parent_based_always_on", cfg.Sampler.Type)
	assert.Positive(t, cfg.Metrics.ExportInterval)
}
