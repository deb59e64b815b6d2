package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KOMKZ/go-yogan-ioc/bean"
	"github.com/KOMKZ/go-yogan-ioc/container"
	"github.com/KOMKZ/go-yogan-ioc/database"
	"github.com/KOMKZ/go-yogan-ioc/di"
	"github.com/KOMKZ/go-yogan-ioc/errcode"
	"github.com/KOMKZ/go-yogan-ioc/scanner"
	"github.com/KOMKZ/go-yogan-ioc/validator"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Greeter interface {
	Greet(name string) string
}

type greeter struct{}

func (g *greeter) Greet(name string) string { return "hello " + name }

type frontDesk struct {
	Greeter Greeter `inject:""`
}

func testCatalog() *scanner.Catalog {
	return scanner.NewCatalog().
		Descriptors("app/greet", bean.Of[*greeter](bean.Service("greeter"), bean.Implements[Greeter]())).
		Descriptors("app/desk", bean.Of[*frontDesk](bean.Service("frontDesk")))
}

func writeConfigDir(t *testing.T, content string) string {
	t.Helper()
	t.Setenv("APP_ENV", "apptest")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	return dir
}

func TestApplication_Lifecycle(t *testing.T) {
	dir := writeConfigDir(t, `
ioc:
  scan_root: app
logger:
  level: error
  enable_file: false
`)
	app := New(testCatalog(), WithConfigPath(dir))
	assert.Equal(t, StateInit, app.State())

	ctx := context.Background()
	require.NoError(t, app.Setup(ctx))
	assert.Equal(t, StateSetup, app.State())
	assert.Equal(t, "app", app.Config().IOC.ScanRoot)
	require.NotNil(t, app.Logger())

	c, err := app.Container(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateRunning, app.State())
	assert.Equal(t, []string{"frontDesk", "greeter"}, c.Names())

	again, err := app.Container(ctx)
	require.NoError(t, err)
	assert.Same(t, c, again)

	desk, err := di.InvokeBean[*frontDesk](app.Injector(), "frontDesk")
	require.NoError(t, err)
	assert.Equal(t, "hello bob", desk.Greeter.Greet("bob"))

	app.Shutdown(ctx)
	assert.Equal(t, StateStopped, app.State())
}

func TestApplication_EnvAndFlagOverrides(t *testing.T) {
	dir := writeConfigDir(t, "ioc:\n  scan_root: nothing\nlogger:\n  level: error\n  enable_file: false\n")
	t.Setenv("YOGANAPP_IOC__RECURSIVE", "false")

	fs := pflag.NewFlagSet("app", pflag.ContinueOnError)
	fs.String("scan-root", "", "")
	require.NoError(t, fs.Parse([]string{"--scan-root", "app"}))

	app := New(testCatalog(),
		WithConfigPath(dir),
		WithConfigPrefix("YOGANAPP"),
		WithFlags(fs, map[string]string{"scan-root": "ioc.scan_root"}))
	require.NoError(t, app.Setup(context.Background()))
	assert.Equal(t, "app", app.Config().IOC.ScanRoot)
	assert.False(t, app.Config().IOC.IsRecursive())

	// 非递归扫描 "app" 本身没有组件
	c, err := app.Container(context.Background())
	require.NoError(t, err)
	assert.Empty(t, c.Names())
}

func TestApplication_ContainerBeforeSetup(t *testing.T) {
	app := New(testCatalog())
	_, err := app.Container(context.Background())
	assert.Error(t, err)
}

func TestApplication_InvalidConfig(t *testing.T) {
	dir := writeConfigDir(t, `
database:
  connections:
    master:
      driver: oracle
      dsn: x
`)
	app := New(testCatalog(), WithConfigPath(dir))
	err := app.Setup(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, validator.ErrValidation))
}

func TestAppConfig_Validate(t *testing.T) {
	valid := func() AppConfig {
		cfg := AppConfig{
			IOC: container.Config{ScanRoot: "com/bank"},
			Database: DatabaseConfig{Connections: map[string]database.Config{
				"master": {Driver: "sqlite", DSN: "file::memory:"},
			}},
		}
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*AppConfig)
		field  string
	}{
		{name: "valid"},
		{
			name:   "unknown connection",
			mutate: func(c *AppConfig) { c.IOC.Connection = "replica" },
			field:  "IOC.Connection",
		},
		{
			name:   "bad scan root",
			mutate: func(c *AppConfig) { c.IOC.ScanRoot = "com bank" },
			field:  "IOC.ScanRoot",
		},
		{
			name: "missing dsn",
			mutate: func(c *AppConfig) {
				c.Database.Connections["master"] = database.Config{Driver: "sqlite"}
			},
			field: "Database.Connections.master.DSN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			err := validator.Validate(cfg)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var layered *errcode.LayeredError
			require.True(t, errors.As(err, &layered))
			fields, ok := layered.Data()["fields"].(map[string]string)
			require.True(t, ok)
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestAppState_String(t *testing.T) {
	assert.Equal(t, "Init", StateInit.String())
	assert.Equal(t, "Running", StateRunning.String())
	assert.Equal(t, "Stopped", StateStopped.String())
	assert.Equal(t, "Unknown", AppState(99).String())
}
