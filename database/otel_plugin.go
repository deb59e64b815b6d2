package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const instrumentationName = "github.com/KOMKZ/go-yogan-ioc/database"

const (
	spanKey  = "otel:span"
	startKey = "otel:start"
)

// OtelPlugin GORM OpenTelemetry 插件：每条语句一个 Span，并记录查询次数与耗时
type OtelPlugin struct {
	tracer    trace.Tracer
	queries   metric.Int64Counter
	duration  metric.Float64Histogram
	traceSQL  bool
	sqlMaxLen int
}

// NewOtelPlugin creates the plugin. Nil providers fall back to the global ones.
func NewOtelPlugin(tp trace.TracerProvider, mp metric.MeterProvider) *OtelPlugin {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	meter := mp.Meter(instrumentationName)
	// 仪表创建失败时 otel 返回 no-op 实现，可以直接使用
	queries, _ := meter.Int64Counter("db.client.queries",
		metric.WithDescription("Number of executed SQL statements"),
		metric.WithUnit("{query}"))
	duration, _ := meter.Float64Histogram("db.client.duration",
		metric.WithDescription("SQL statement duration"),
		metric.WithUnit("s"))

	return &OtelPlugin{
		tracer:    tp.Tracer(instrumentationName),
		queries:   queries,
		duration:  duration,
		sqlMaxLen: 1000,
	}
}

// WithTraceSQL 设置是否记录 SQL 语句
func (p *OtelPlugin) WithTraceSQL(enabled bool) *OtelPlugin {
	p.traceSQL = enabled
	return p
}

// WithSQLMaxLen 设置 SQL 最大长度
func (p *OtelPlugin) WithSQLMaxLen(maxLen int) *OtelPlugin {
	if maxLen > 0 {
		p.sqlMaxLen = maxLen
	}
	return p
}

// Name 插件名称
func (p *OtelPlugin) Name() string {
	return "otel"
}

// Initialize registers before/after callbacks for every statement kind
func (p *OtelPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	type hook struct {
		op       string
		register func(before, after func(*gorm.DB)) error
	}
	hooks := []hook{
		{"create", func(b, a func(*gorm.DB)) error {
			return firstErr(cb.Create().Before("gorm:create").Register("otel:before_create", b),
				cb.Create().After("gorm:create").Register("otel:after_create", a))
		}},
		{"query", func(b, a func(*gorm.DB)) error {
			return firstErr(cb.Query().Before("gorm:query").Register("otel:before_query", b),
				cb.Query().After("gorm:query").Register("otel:after_query", a))
		}},
		{"update", func(b, a func(*gorm.DB)) error {
			return firstErr(cb.Update().Before("gorm:update").Register("otel:before_update", b),
				cb.Update().After("gorm:update").Register("otel:after_update", a))
		}},
		{"delete", func(b, a func(*gorm.DB)) error {
			return firstErr(cb.Delete().Before("gorm:delete").Register("otel:before_delete", b),
				cb.Delete().After("gorm:delete").Register("otel:after_delete", a))
		}},
		{"row", func(b, a func(*gorm.DB)) error {
			return firstErr(cb.Row().Before("gorm:row").Register("otel:before_row", b),
				cb.Row().After("gorm:row").Register("otel:after_row", a))
		}},
		{"raw", func(b, a func(*gorm.DB)) error {
			return firstErr(cb.Raw().Before("gorm:raw").Register("otel:before_raw", b),
				cb.Raw().After("gorm:raw").Register("otel:after_raw", a))
		}},
	}

	for _, h := range hooks {
		op := h.op
		if err := h.register(func(db *gorm.DB) { p.before(db, op) }, p.after); err != nil {
			return err
		}
	}
	return nil
}

// before 开始 Span 并记录起始时间
func (p *OtelPlugin) before(db *gorm.DB, op string) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}

	spanName := "gorm." + op
	if db.Statement.Table != "" {
		spanName += " " + db.Statement.Table
	}

	ctx, span := p.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", db.Dialector.Name()),
			attribute.String("db.operation", op),
		))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.table", db.Statement.Table))
	}

	db.Statement.Context = ctx
	db.InstanceSet(spanKey, span)
	db.InstanceSet(startKey, time.Now())
}

// after 结束 Span 并记录指标
func (p *OtelPlugin) after(db *gorm.DB) {
	spanVal, ok := db.InstanceGet(spanKey)
	if !ok {
		return
	}
	span, ok := spanVal.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	op := operationOf(db)
	attrs := metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("table", tableOf(db)),
	)
	ctx := db.Statement.Context
	p.queries.Add(ctx, 1, attrs)
	if start, ok := db.InstanceGet(startKey); ok {
		p.duration.Record(ctx, time.Since(start.(time.Time)).Seconds(), attrs)
	}

	if p.traceSQL {
		if sql := db.Statement.SQL.String(); sql != "" {
			if len(sql) > p.sqlMaxLen {
				sql = sql[:p.sqlMaxLen] + "..."
			}
			span.SetAttributes(attribute.String("db.statement", sql))
		}
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

// operationOf 取 SQL 首个关键字，失败时回退为 query
func operationOf(db *gorm.DB) string {
	fields := strings.Fields(db.Statement.SQL.String())
	if len(fields) == 0 {
		return "query"
	}
	return strings.ToLower(fields[0])
}

func tableOf(db *gorm.DB) string {
	if db.Statement.Table == "" {
		return "unknown"
	}
	return db.Statement.Table
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
