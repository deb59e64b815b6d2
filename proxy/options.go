package proxy

import (
	"github.com/KOMKZ/go-yogan-ioc/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/KOMKZ/go-yogan-ioc/proxy"

type options struct {
	log            logger.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option configures handlers and the factory
type Option func(*options)

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithTracerProvider sets the tracer provider (default: global)
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithMeterProvider sets the meter provider (default: global)
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// instruments shared by all handlers of one factory
type instruments struct {
	log    logger.Logger
	tracer trace.Tracer
	calls  metric.Int64Counter
}

func newInstruments(o options) *instruments {
	tp := o.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	mp := o.meterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	// 创建失败时 otel 返回 no-op 计数器
	calls, _ := mp.Meter(instrumentationName).Int64Counter("ioc.proxy.transactional_calls",
		metric.WithDescription("Transactional method invocations by outcome"),
		metric.WithUnit("{call}"))

	return &instruments{
		log:    logger.OrNop(o.log),
		tracer: tp.Tracer(instrumentationName),
		calls:  calls,
	}
}
