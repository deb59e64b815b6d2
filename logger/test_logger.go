package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestCtxLogger 测试专用的 Context-Aware Logger
// 将日志记录到内存，方便在单元测试中验证
type TestCtxLogger struct {
	logs []LogEntry
	mu   sync.RWMutex
}

// LogEntry 日志条目
type LogEntry struct {
	Level   string
	Message string
	TraceID string
	Fields  map[string]interface{}
}

// NewTestCtxLogger 创建测试用 Logger（记录到内存）
//
//	testLogger := logger.NewTestCtxLogger()
//	c := container.New(catalog, container.WithLogger(testLogger))
//	assert.True(t, testLogger.HasLog("WARN", "bean identifier collision"))
func NewTestCtxLogger() *TestCtxLogger {
	return &TestCtxLogger{logs: make([]LogEntry, 0)}
}

func (t *TestCtxLogger) record(ctx context.Context, level, msg string, fields []zap.Field) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.logs = append(t.logs, LogEntry{
		Level:   level,
		Message: msg,
		TraceID: extractTraceIDFromContext(ctx, nil),
		Fields:  extractFieldsMap(fields),
	})
}

// InfoCtx 记录 Info 级别日志
func (t *TestCtxLogger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "INFO", msg, fields)
}

// ErrorCtx 记录 Error 级别日志
func (t *TestCtxLogger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "ERROR", msg, fields)
}

// DebugCtx 记录 Debug 级别日志
func (t *TestCtxLogger) DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "DEBUG", msg, fields)
}

// WarnCtx 记录 Warn 级别日志
func (t *TestCtxLogger) WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "WARN", msg, fields)
}

// HasLog 检查是否存在指定级别和消息的日志
func (t *TestCtxLogger) HasLog(level, message string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, log := range t.logs {
		if log.Level == level && log.Message == message {
			return true
		}
	}
	return false
}

// HasLogWithField 检查是否存在指定级别、消息和字段的日志
func (t *TestCtxLogger) HasLogWithField(level, message, fieldKey string, fieldValue interface{}) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, log := range t.logs {
		if log.Level == level && log.Message == message {
			if val, exists := log.Fields[fieldKey]; exists && val == fieldValue {
				return true
			}
		}
	}
	return false
}

// CountLogs 统计指定级别的日志数量
func (t *TestCtxLogger) CountLogs(level string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := 0
	for _, log := range t.logs {
		if log.Level == level {
			count++
		}
	}
	return count
}

// Logs 获取所有日志副本
func (t *TestCtxLogger) Logs() []LogEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	logs := make([]LogEntry, len(t.logs))
	copy(logs, t.logs)
	return logs
}

// Clear 清空日志（用于测试隔离）
func (t *TestCtxLogger) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logs = make([]LogEntry, 0)
}

// extractFieldsMap 将 zap.Field 转换为 map（用于测试断言）
func extractFieldsMap(fields []zap.Field) map[string]interface{} {
	enc := zapcore.NewMapObjectEncoder()
	for _, field := range fields {
		field.AddTo(enc)
	}

	result := make(map[string]interface{}, len(enc.Fields))
	for k, v := range enc.Fields {
		result[k] = v
	}
	return result
}
