// Package database manages gorm connections for transactional beans.
package database

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/KOMKZ/go-yogan-ioc/errcode"
)

var (
	// ErrInvalidConfig invalid connection configuration
	ErrInvalidConfig = errcode.Register(errcode.New(
		23, 101, "database", "error.database.invalid_config", "invalid database config"))

	// ErrConnectionFailed the connection could not be opened
	ErrConnectionFailed = errcode.Register(errcode.New(
		23, 102, "database", "error.database.connection_failed", "database connection failed"))

	// ErrRecordNotFound no row matched
	ErrRecordNotFound = errcode.Register(errcode.New(
		23, 103, "database", "error.database.record_not_found", "record not found"))

	// ErrUnknownConnection no connection under the given name
	ErrUnknownConnection = errcode.Register(errcode.New(
		23, 104, "database", "error.database.unknown_connection", "database connection not configured"))
)

// Config 单个连接的配置
type Config struct {
	Driver          string        `mapstructure:"driver"`            // mysql, postgres, sqlite
	DSN             string        `mapstructure:"dsn"`               // data source name
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
	EnableLog       bool          `mapstructure:"enable_log"`        // 是否输出 SQL 日志
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`    // 慢查询阈值
	EnableAudit     bool          `mapstructure:"enable_audit"`      // 是否记录全部 SQL

	// OpenTelemetry
	TraceSQL       bool `mapstructure:"trace_sql"`         // 是否把 SQL 写入 Span
	TraceSQLMaxLen int  `mapstructure:"trace_sql_max_len"` // SQL 最大长度
}

// DefaultConfig returns a sqlite configuration with sane pool defaults
func DefaultConfig() Config {
	return Config{
		Driver:          "sqlite",
		DSN:             "yogan-ioc.db",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		EnableLog:       true,
		SlowThreshold:   200 * time.Millisecond,
		EnableAudit:     false,
		TraceSQL:        false,
		TraceSQLMaxLen:  1000,
	}
}

// ApplyDefaults fills zero-valued pool settings (in-place modification)
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.Driver == "" {
		c.Driver = defaults.Driver
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = defaults.MaxOpenConns
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = defaults.MaxIdleConns
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = defaults.ConnMaxLifetime
	}
	if c.SlowThreshold <= 0 {
		c.SlowThreshold = defaults.SlowThreshold
	}
	if c.TraceSQLMaxLen <= 0 {
		c.TraceSQLMaxLen = defaults.TraceSQLMaxLen
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Driver, validation.Required, validation.In("mysql", "postgres", "sqlite")),
		validation.Field(&c.DSN, validation.Required),
		validation.Field(&c.MaxOpenConns, validation.Min(0)),
		validation.Field(&c.MaxIdleConns, validation.Min(0)),
	)
}
