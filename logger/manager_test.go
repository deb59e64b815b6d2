package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestNewManager_AppliesDefaults 零值配置会被补全
func TestNewManager_AppliesDefaults(t *testing.T) {
	m := NewManager(ManagerConfig{})

	cfg := m.Config()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Encoding)
	assert.Equal(t, "trace_id", cfg.TraceIDKey)
	assert.Equal(t, 100, cfg.MaxSize)
	assert.NoError(t, cfg.Validate())
}

// TestManager_GetLoggerCached 同一模块返回同一实例
func TestManager_GetLoggerCached(t *testing.T) {
	m := NewManager(ManagerConfig{EnableConsole: false})

	a := m.GetLogger(ModuleIOC)
	b := m.GetLogger(ModuleIOC)
	c := m.GetLogger(ModuleTx)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, ModuleIOC, a.Module())
}

// TestManager_FileOutput 启用文件输出后按级别拆分文件
func TestManager_FileOutput(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(ManagerConfig{
		BaseLogDir:            dir,
		Level:                 "debug",
		EnableFile:            true,
		EnableLevelInFilename: true,
		EnableDateInFilename:  false,
	})

	log := m.GetLogger(ModuleIOC)
	log.InfoCtx(context.Background(), "bean registered", zap.String("bean", "accountDao"))
	log.ErrorCtx(context.Background(), "build failed")
	m.CloseAll()

	info, err := os.ReadFile(filepath.Join(dir, ModuleIOC, ModuleIOC+"-info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "bean registered")
	assert.Contains(t, string(info), `"bean":"accountDao"`)
	assert.NotContains(t, string(info), "build failed")

	errLog, err := os.ReadFile(filepath.Join(dir, ModuleIOC, ModuleIOC+"-error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errLog), "build failed")
}

// TestManagerConfig_Validate 非法配置
func TestManagerConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*ManagerConfig)
	}{
		{"非法级别", func(c *ManagerConfig) { c.Level = "verbose" }},
		{"非法编码", func(c *ManagerConfig) { c.Encoding = "pretty" }},
		{"MaxSize 越界", func(c *ManagerConfig) { c.MaxSize = 0 }},
		{"非法堆栈级别", func(c *ManagerConfig) { c.StacktraceLevel = "trace" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultManagerConfig()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
