package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type otelModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func TestOtelPlugin_SpansAndMetrics(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	cfg := sqliteConfig(t)
	cfg.TraceSQL = true

	// 建表走独立连接，避免迁移语句进入统计
	plain, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, plain.AutoMigrate(&otelModel{}))
	sqlDB, _ := plain.DB()
	require.NoError(t, sqlDB.Close())

	m, err := NewManager(map[string]Config{"master": cfg}, nil, WithTelemetry(tp, mp))
	require.NoError(t, err)
	defer m.Close()

	db := m.DB("master")

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&otelModel{Name: "alice"}).Error)

	var got otelModel
	require.NoError(t, db.WithContext(ctx).First(&got).Error)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "gorm.create otel_models", spans[0].Name())
	assert.Equal(t, "gorm.query otel_models", spans[1].Name())

	var statement string
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "db.statement" {
			statement = kv.Value.AsString()
		}
	}
	assert.Contains(t, statement, "INSERT INTO")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name != "db.client.queries" {
				continue
			}
			for _, dp := range md.Data.(metricdata.Sum[int64]).DataPoints {
				total += dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), total)
}

func TestOtelPlugin_Name(t *testing.T) {
	p := NewOtelPlugin(nil, nil).WithSQLMaxLen(0)
	assert.Equal(t, "otel", p.Name())
	assert.Equal(t, 1000, p.sqlMaxLen)
}
