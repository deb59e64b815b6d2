package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/KOMKZ/go-yogan-ioc/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// Manager 管理 TracerProvider 与 MeterProvider
type Manager struct {
	config Config
	log    logger.Logger
	writer io.Writer
	global bool

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

// Option configures a Manager
type Option func(*Manager)

// WithWriter 导出目标（默认 stdout）
func WithWriter(w io.Writer) Option {
	return func(m *Manager) {
		m.writer = w
	}
}

// WithGlobal 是否注册为全局 provider（默认 true）
func WithGlobal(global bool) Option {
	return func(m *Manager) {
		m.global = global
	}
}

// NewManager creates the providers. A disabled config yields no-op
// providers and nothing is registered globally.
func NewManager(ctx context.Context, cfg Config, log logger.Logger, opts ...Option) (*Manager, error) {
	cfg.ApplyDefaults()
	m := &Manager{config: cfg, log: logger.OrNop(log), writer: os.Stdout, global: true}
	for _, opt := range opts {
		opt(m)
	}

	if !cfg.Enabled {
		m.log.DebugCtx(ctx, "telemetry disabled")
		return m, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource failed: %w", err)
	}

	spanExporter, err := m.createSpanExporter()
	if err != nil {
		return nil, err
	}
	// 同步导出：命令行进程生命周期短
	m.tp = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(createSampler(cfg.Sampler)),
		sdktrace.WithSyncer(spanExporter),
	)

	if cfg.Metrics.Enabled {
		metricExporter, err := m.createMetricExporter()
		if err != nil {
			_ = m.tp.Shutdown(ctx)
			return nil, err
		}
		m.mp = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
				sdkmetric.WithInterval(cfg.Metrics.ExportInterval))),
		)
	}

	if m.global {
		otel.SetTracerProvider(m.tp)
		if m.mp != nil {
			otel.SetMeterProvider(m.mp)
		}
	}

	m.log.InfoCtx(ctx, "telemetry started",
		zap.String("service_name", cfg.ServiceName),
		zap.String("exporter", cfg.Exporter),
		zap.Bool("metrics", m.mp != nil))
	return m, nil
}

func (m *Manager) createSpanExporter() (sdktrace.SpanExporter, error) {
	switch m.config.Exporter {
	case "noop":
		return &noopExporter{}, nil
	case "stdout":
		opts := []stdouttrace.Option{stdouttrace.WithWriter(m.writer)}
		if m.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		return stdouttrace.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", m.config.Exporter)
	}
}

func (m *Manager) createMetricExporter() (sdkmetric.Exporter, error) {
	opts := []stdoutmetric.Option{stdoutmetric.WithWriter(m.writer)}
	if m.config.PrettyPrint {
		opts = append(opts, stdoutmetric.WithPrettyPrint())
	}
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout metrics exporter: %w", err)
	}
	return exporter, nil
}

func createSampler(cfg SamplerConfig) sdktrace.Sampler {
	switch cfg.Type {
	case "always_on":
		return sdktrace.AlwaysSample()
	case "always_off":
		return sdktrace.NeverSample()
	case "trace_id_ratio":
		return sdktrace.TraceIDRatioBased(cfg.Ratio)
	default:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
}

// Enabled 是否启用
func (m *Manager) Enabled() bool {
	return m.tp != nil
}

// TracerProvider 未启用时返回 no-op
func (m *Manager) TracerProvider() trace.TracerProvider {
	if m.tp == nil {
		return tracenoop.NewTracerProvider()
	}
	return m.tp
}

// MeterProvider 未启用指标时返回 no-op
func (m *Manager) MeterProvider() metric.MeterProvider {
	if m.mp == nil {
		return metricnoop.NewMeterProvider()
	}
	return m.mp
}

// Shutdown 刷新并关闭 provider
func (m *Manager) Shutdown(ctx context.Context) error {
	var errs []error
	if m.tp != nil {
		if err := m.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer provider failed: %w", err))
		}
	}
	if m.mp != nil {
		if err := m.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown meter provider failed: %w", err))
		}
	}
	return errors.Join(errs...)
}

type noopExporter struct{}

func (n *noopExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	return nil
}

func (n *noopExporter) Shutdown(ctx context.Context) error {
	return nil
}
