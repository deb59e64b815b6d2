// Package application bootstraps a container from layered configuration.
//
// The application owns a samber/do root scope with every core provider
// registered (config, logger, database, transactions, container). Setup
// loads and validates AppConfig; Container builds the beans on first use.
package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/KOMKZ/go-yogan-ioc/config"
	"github.com/KOMKZ/go-yogan-ioc/container"
	"github.com/KOMKZ/go-yogan-ioc/di"
	"github.com/KOMKZ/go-yogan-ioc/logger"
	"github.com/KOMKZ/go-yogan-ioc/scanner"
	"github.com/samber/do/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// AppState 应用状态
type AppState int

const (
	StateInit AppState = iota
	StateSetup
	StateRunning
	StateStopping
	StateStopped
)

// String 状态字符串表示
func (s AppState) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateSetup:
		return "Setup"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Application 应用
type Application struct {
	injector *do.RootScope
	catalog  *scanner.Catalog

	configOpts    di.ConfigOptions
	containerOpts []container.Option

	appConfig    *AppConfig
	configLoader *config.Loader
	logger       *logger.CtxZapLogger
	container    *container.Container

	state     AppState
	startTime time.Time
	mu        sync.RWMutex
}

// Option 应用选项
type Option func(*Application)

// WithConfigPath 配置目录
func WithConfigPath(path string) Option {
	return func(app *Application) {
		app.configOpts.ConfigPath = path
	}
}

// WithConfigPrefix 环境变量前缀
func WithConfigPrefix(prefix string) Option {
	return func(app *Application) {
		app.configOpts.ConfigPrefix = prefix
	}
}

// WithFlags 命令行参数覆盖，bindings 为 flag 名 -> 配置 key
func WithFlags(flags *pflag.FlagSet, bindings map[string]string) Option {
	return func(app *Application) {
		app.configOpts.Flags = flags
		app.configOpts.FlagBindings = bindings
	}
}

// WithContainerOptions passes extra options to the container (proxy telemetry etc.)
func WithContainerOptions(opts ...container.Option) Option {
	return func(app *Application) {
		app.containerOpts = append(app.containerOpts, opts...)
	}
}

// New 创建应用；catalog 声明全部组件
func New(catalog *scanner.Catalog, opts ...Option) *Application {
	app := &Application{
		injector:   do.New(),
		catalog:    catalog,
		configOpts: di.ConfigOptions{ConfigPath: "./configs", ConfigPrefix: "YOGAN"},
		state:      StateInit,
		startTime:  time.Now(),
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Setup 注册 Provider，加载并校验配置，初始化日志
func (app *Application) Setup(ctx context.Context) error {
	app.setState(StateSetup)

	di.RegisterCoreProviders(app.injector, app.configOpts, app.catalog, app.containerOpts...)

	loader, err := do.Invoke[*config.Loader](app.injector)
	if err != nil {
		return fmt.Errorf("初始化配置失败: %w", err)
	}
	app.configLoader = loader

	appCfg, err := LoadAppConfig(loader)
	if err != nil {
		return fmt.Errorf("加载 AppConfig 失败: %w", err)
	}
	app.appConfig = appCfg

	log, err := do.Invoke[*logger.CtxZapLogger](app.injector)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	app.logger = log

	app.logger.DebugCtx(ctx, "application setup finished",
		zap.String("config_path", app.configOpts.ConfigPath),
		zap.Strings("config_files", loader.GetLoadedFiles()),
		zap.String("scan_root", appCfg.IOC.ScanRoot))
	return nil
}

// Container 构建（首次调用）并返回容器，同时把 bean 导出到注入器
func (app *Application) Container(ctx context.Context) (*container.Container, error) {
	if app.configLoader == nil {
		return nil, fmt.Errorf("application not set up, call Setup first")
	}

	app.mu.Lock()
	defer app.mu.Unlock()
	if app.container != nil {
		return app.container, nil
	}

	c, err := do.Invoke[*container.Container](app.injector)
	if err != nil {
		return nil, err
	}
	if err := di.ExportBeans(app.injector, c); err != nil {
		return nil, err
	}
	app.container = c
	app.state = StateRunning

	app.logger.InfoCtx(ctx, "application ready",
		zap.Int("beans", len(c.Names())),
		zap.Int64("startup_ms", time.Since(app.startTime).Milliseconds()))
	return c, nil
}

// Shutdown 关闭注入器中的全部组件（数据库连接、日志文件）
func (app *Application) Shutdown(ctx context.Context) {
	app.setState(StateStopping)
	if app.logger != nil {
		app.logger.DebugCtx(ctx, "application shutting down")
	}
	if err := app.injector.Shutdown(); err != nil {
		if app.logger != nil {
			app.logger.WarnCtx(ctx, "injector shutdown failed", zap.Error(err))
		}
	}
	app.setState(StateStopped)
}

// Injector 获取 samber/do 注入器
func (app *Application) Injector() *do.RootScope {
	return app.injector
}

// Config 已加载的应用配置（Setup 前为 nil）
func (app *Application) Config() *AppConfig {
	return app.appConfig
}

// Logger 应用日志（Setup 前为 nil）
func (app *Application) Logger() *logger.CtxZapLogger {
	return app.logger
}

// State 当前状态
func (app *Application) State() AppState {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.state
}

func (app *Application) setState(state AppState) {
	app.mu.Lock()
	defer app.mu.Unlock()
	app.state = state
}
