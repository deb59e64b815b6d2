package logger

import (
	"context"

	"go.uber.org/zap"
)

// Module names used by the container packages
const (
	ModuleIOC = "yogan_ioc"
	ModuleTx  = "yogan_tx"
	ModuleSQL = "yogan_sql"
)

// Logger is the logging surface the container packages depend on.
// Implemented by *CtxZapLogger and *TestCtxLogger.
type Logger interface {
	DebugCtx(ctx context.Context, msg string, fields ...zap.Field)
	InfoCtx(ctx context.Context, msg string, fields ...zap.Field)
	WarnCtx(ctx context.Context, msg string, fields ...zap.Field)
	ErrorCtx(ctx context.Context, msg string, fields ...zap.Field)
}

var (
	_ Logger = (*CtxZapLogger)(nil)
	_ Logger = (*TestCtxLogger)(nil)
)

// NewNopLogger returns a CtxZapLogger that discards everything.
func NewNopLogger() *CtxZapLogger {
	return &CtxZapLogger{base: zap.NewNop(), module: "nop"}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NewNopLogger()
	}
	return l
}
