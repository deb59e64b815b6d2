package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger 把 gorm 的 SQL 日志转发到 yogan_sql 模块（实现 gorm logger.Interface）
type GormLogger struct {
	log           Logger
	slowThreshold time.Duration
	logLevel      gormlogger.LogLevel
	enableAudit   bool
}

// GormLoggerConfig GORM Logger 配置
type GormLoggerConfig struct {
	SlowThreshold time.Duration       // 慢查询阈值，默认 200ms
	LogLevel      gormlogger.LogLevel // 日志级别
	EnableAudit   bool                // 是否记录所有 SQL
}

// DefaultGormLoggerConfig 默认配置
func DefaultGormLoggerConfig() GormLoggerConfig {
	return GormLoggerConfig{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormlogger.Warn,
		EnableAudit:   false,
	}
}

// NewGormLogger creates a GormLogger writing to log.
// A nil log falls back to the global yogan_sql module logger.
func NewGormLogger(cfg GormLoggerConfig, log Logger) *GormLogger {
	if log == nil {
		log = GetLogger(ModuleSQL)
	}
	return &GormLogger{
		log:           log,
		slowThreshold: cfg.SlowThreshold,
		logLevel:      cfg.LogLevel,
		enableAudit:   cfg.EnableAudit,
	}
}

// LogMode 设置日志级别
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	newLogger := *l
	newLogger.logLevel = level
	return &newLogger
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= gormlogger.Info {
		l.log.DebugCtx(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= gormlogger.Warn {
		l.log.WarnCtx(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= gormlogger.Error {
		l.log.ErrorCtx(ctx, fmt.Sprintf(msg, data...))
	}
}

// Trace 记录每条 SQL 的执行情况
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.logLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := []zap.Field{
		zap.String("sql", sanitizeSQL(sql)),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
	}

	switch {
	case err != nil && l.logLevel >= gormlogger.Error:
		// RecordNotFound 属于正常业务分支
		if !errors.Is(err, gormlogger.ErrRecordNotFound) {
			fields = append(fields, zap.Error(err))
			l.log.ErrorCtx(ctx, "sql error", fields...)
		} else if l.enableAudit {
			l.log.DebugCtx(ctx, "sql", fields...)
		}

	case l.slowThreshold != 0 && elapsed > l.slowThreshold && l.logLevel >= gormlogger.Warn:
		fields = append(fields, zap.Duration("threshold", l.slowThreshold))
		l.log.WarnCtx(ctx, "slow sql", fields...)

	case l.logLevel >= gormlogger.Info && l.enableAudit:
		l.log.DebugCtx(ctx, "sql", fields...)
	}
}
