package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/KOMKZ/go-yogan-ioc/logger"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLoggerFactory GORM Logger 工厂函数
type GormLoggerFactory func(cfg Config) gormlogger.Interface

// Manager 数据库管理器（支持多个命名连接）
type Manager struct {
	instances     map[string]*gorm.DB
	configs       map[string]Config
	loggerFactory GormLoggerFactory
	logger        logger.Logger
	telemetry     bool
	tracerProv    trace.TracerProvider
	meterProv     metric.MeterProvider
	mu            sync.RWMutex
}

// Option configures a Manager
type Option func(*Manager)

// WithGormLogger sets the GORM logger factory
func WithGormLogger(factory GormLoggerFactory) Option {
	return func(m *Manager) {
		m.loggerFactory = factory
	}
}

// WithTelemetry registers the OpenTelemetry plugin on every connection.
// Nil providers fall back to the global ones.
func WithTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) Option {
	return func(m *Manager) {
		m.telemetry = true
		m.tracerProv = tp
		m.meterProv = mp
	}
}

// NewManager opens every configured connection
func NewManager(configs map[string]Config, log logger.Logger, opts ...Option) (*Manager, error) {
	m := &Manager{
		instances: make(map[string]*gorm.DB),
		configs:   make(map[string]Config),
		logger:    logger.OrNop(log),
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, name := range sortedNames(configs) {
		cfg := configs[name]
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			m.Close()
			return nil, ErrInvalidConfig.Wrap(err).WithData("connection", name)
		}

		db, err := m.openDB(cfg)
		if err != nil {
			m.Close()
			return nil, ErrConnectionFailed.Wrap(err).WithData("connection", name)
		}

		sqlDB, err := db.DB()
		if err != nil {
			m.Close()
			return nil, ErrConnectionFailed.Wrap(err).WithData("connection", name)
		}
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

		m.instances[name] = db
		m.configs[name] = cfg

		m.logger.DebugCtx(context.Background(), "database connected",
			zap.String("name", name),
			zap.String("driver", cfg.Driver))
	}

	return m, nil
}

// openDB 按驱动打开连接
func (m *Manager) openDB(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	gormLogger := gormlogger.Default.LogMode(gormlogger.Silent)
	if m.loggerFactory != nil && cfg.EnableLog {
		gormLogger = m.loggerFactory(cfg)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}

	if m.telemetry {
		plugin := NewOtelPlugin(m.tracerProv, m.meterProv).
			WithTraceSQL(cfg.TraceSQL).
			WithSQLMaxLen(cfg.TraceSQLMaxLen)
		if err := db.Use(plugin); err != nil {
			return nil, fmt.Errorf("failed to use otel plugin: %w", err)
		}
	}

	return db, nil
}

// DB returns the named connection, or nil
func (m *Manager) DB(name string) *gorm.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[name]
}

// Lookup returns the named connection or an error
func (m *Manager) Lookup(name string) (*gorm.DB, error) {
	if db := m.DB(name); db != nil {
		return db, nil
	}
	return nil, ErrUnknownConnection.WithData("connection", name)
}

// Names 所有连接名（排序）
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.instances))
	for name := range m.instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ping checks every connection
func (m *Manager) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for name, db := range m.instances {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB for %s: %w", name, err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("ping failed for %s: %w", name, err)
		}
	}
	return nil
}

// Close 关闭所有连接
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx := context.Background()
	for name, db := range m.instances {
		sqlDB, err := db.DB()
		if err != nil {
			m.logger.ErrorCtx(ctx, "failed to get sql.DB", zap.String("name", name), zap.Error(err))
			continue
		}
		if err := sqlDB.Close(); err != nil {
			m.logger.ErrorCtx(ctx, "failed to close database", zap.String("name", name), zap.Error(err))
			continue
		}
		m.logger.DebugCtx(ctx, "database closed", zap.String("name", name))
	}
	m.instances = make(map[string]*gorm.DB)
	return nil
}

// Shutdown implements the samber/do Shutdowner interface
func (m *Manager) Shutdown() error {
	return m.Close()
}

func sortedNames(configs map[string]Config) []string {
	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
