package di

import (
	"context"

	"github.com/KOMKZ/go-yogan-ioc/config"
	"github.com/KOMKZ/go-yogan-ioc/container"
	"github.com/KOMKZ/go-yogan-ioc/database"
	"github.com/KOMKZ/go-yogan-ioc/health"
	"github.com/KOMKZ/go-yogan-ioc/logger"
	"github.com/KOMKZ/go-yogan-ioc/proxy"
	"github.com/KOMKZ/go-yogan-ioc/scanner"
	"github.com/KOMKZ/go-yogan-ioc/telemetry"
	"github.com/KOMKZ/go-yogan-ioc/tx"
	"github.com/KOMKZ/go-yogan-ioc/validator"
	"github.com/samber/do/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ============================================
// Layer 0/1: Config, Logger
// ============================================

// ConfigOptions 配置组件选项
type ConfigOptions struct {
	ConfigPath   string            // 配置目录路径
	ConfigPrefix string            // 环境变量前缀
	Flags        *pflag.FlagSet    // 命令行参数
	FlagBindings map[string]string // flag 名 -> 配置 key
}

// ProvideConfigLoader 创建 config.Loader 的 Provider（无依赖）
func ProvideConfigLoader(opts ConfigOptions) func(do.Injector) (*config.Loader, error) {
	return func(i do.Injector) (*config.Loader, error) {
		return config.NewLoaderBuilder().
			WithConfigPath(opts.ConfigPath).
			WithEnvPrefix(opts.ConfigPrefix).
			WithFlags(opts.Flags, opts.FlagBindings).
			Build()
	}
}

// ProvideLoggerManager 创建 logger.Manager 的 Provider
// 依赖：config.Loader；无 logger 配置时使用默认值
func ProvideLoggerManager(i do.Injector) (*logger.Manager, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return logger.NewManager(logger.DefaultManagerConfig()), nil
	}

	cfg := logger.DefaultManagerConfig()
	if loader.IsSet("logger") {
		if err := loader.UnmarshalKey("logger", &cfg); err != nil {
			return nil, err
		}
	}
	cfg.ApplyDefaults()
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}
	return logger.NewManager(cfg), nil
}

// ProvideCtxLogger 创建命名 CtxZapLogger 的 Provider 工厂
func ProvideCtxLogger(moduleName string) func(do.Injector) (*logger.CtxZapLogger, error) {
	return func(i do.Injector) (*logger.CtxZapLogger, error) {
		mgr, err := do.Invoke[*logger.Manager](i)
		if err != nil {
			return logger.GetLogger(moduleName), nil
		}
		return mgr.GetLogger(moduleName), nil
	}
}

// ProvideTelemetryManager 读取 telemetry 配置段；未启用时提供 no-op provider
func ProvideTelemetryManager(i do.Injector) (*telemetry.Manager, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return nil, err
	}
	logMgr, err := do.Invoke[*logger.Manager](i)
	if err != nil {
		return nil, err
	}

	cfg := telemetry.DefaultConfig()
	if loader.IsSet("telemetry") {
		if err := loader.UnmarshalKey("telemetry", &cfg); err != nil {
			return nil, err
		}
	}
	cfg.ApplyDefaults()
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}
	return telemetry.NewManager(context.Background(), cfg, logMgr.GetLogger(logger.ModuleIOC))
}

// ============================================
// Layer 2: Database, Transactions
// ============================================

// ProvideDatabaseManager 创建 database.Manager 的 Provider
// 读取 database.connections；SQL 日志写入 yogan_sql 模块
func ProvideDatabaseManager(i do.Injector) (*database.Manager, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return nil, err
	}
	logMgr, err := do.Invoke[*logger.Manager](i)
	if err != nil {
		return nil, err
	}
	tm, err := do.Invoke[*telemetry.Manager](i)
	if err != nil {
		return nil, err
	}

	var configs map[string]database.Config
	if err := loader.UnmarshalKey("database.connections", &configs); err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, ErrComponentNotFound.WithMsg("database connections not configured")
	}

	gormLoggerFactory := func(cfg database.Config) gormlogger.Interface {
		loggerCfg := logger.DefaultGormLoggerConfig()
		loggerCfg.SlowThreshold = cfg.SlowThreshold
		loggerCfg.EnableAudit = cfg.EnableAudit
		if cfg.EnableAudit {
			loggerCfg.LogLevel = gormlogger.Info
		}
		return logger.NewGormLogger(loggerCfg, logMgr.GetLogger(logger.ModuleSQL))
	}

	return database.NewManager(configs, logMgr.GetLogger(logger.ModuleIOC),
		database.WithGormLogger(gormLoggerFactory),
		database.WithTelemetry(tm.TracerProvider(), tm.MeterProvider()),
	)
}

// ProvideContainerConfig 读取 ioc 配置段
func ProvideContainerConfig(i do.Injector) (container.Config, error) {
	cfg := container.DefaultConfig()
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return cfg, err
	}
	if loader.IsSet("ioc") {
		if err := loader.UnmarshalKey("ioc", &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.ApplyDefaults()
	if err := validator.Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ProvideDefaultDB 提供事务使用的连接（ioc.connection，默认 master）
func ProvideDefaultDB(i do.Injector) (*gorm.DB, error) {
	mgr, err := do.Invoke[*database.Manager](i)
	if err != nil {
		return nil, err
	}
	cfg, err := do.Invoke[container.Config](i)
	if err != nil {
		return nil, err
	}
	return mgr.Lookup(cfg.Connection)
}

// ProvideTxManager 提供基于 gorm 的事务管理器
func ProvideTxManager(i do.Injector) (tx.Manager, error) {
	db, err := do.Invoke[*gorm.DB](i)
	if err != nil {
		return nil, err
	}
	logMgr, err := do.Invoke[*logger.Manager](i)
	if err != nil {
		return nil, err
	}
	return tx.NewGormManager(db, logMgr.GetLogger(logger.ModuleTx)), nil
}

// ============================================
// Layer 3: Container
// ============================================

// ProvideContainer 创建并构建容器
// 事务管理器不可用时（未配置数据库）仍可构建无事务 bean 的容器
func ProvideContainer(catalog *scanner.Catalog, opts ...container.Option) func(do.Injector) (*container.Container, error) {
	return func(i do.Injector) (*container.Container, error) {
		cfg, err := do.Invoke[container.Config](i)
		if err != nil {
			return nil, err
		}
		logMgr, err := do.Invoke[*logger.Manager](i)
		if err != nil {
			return nil, err
		}
		tm, err := do.Invoke[*telemetry.Manager](i)
		if err != nil {
			return nil, err
		}
		log := logMgr.GetLogger(logger.ModuleIOC)

		base := []container.Option{
			container.WithLogger(log),
			container.WithRecursive(cfg.IsRecursive()),
			container.WithProxyOptions(
				proxy.WithTracerProvider(tm.TracerProvider()),
				proxy.WithMeterProvider(tm.MeterProvider()),
			),
		}
		if txm, err := do.Invoke[tx.Manager](i); err == nil {
			base = append(base, container.WithTxManager(txm))
		} else {
			log.WarnCtx(context.Background(), "transaction manager unavailable, building without it",
				zap.Error(err))
		}

		c := container.New(catalog, append(base, opts...)...)
		if err := c.Build(context.Background(), cfg.ScanRoot); err != nil {
			return nil, err
		}
		return c, nil
	}
}

// ProvideHealthAggregator 数据库连接与容器构建状态的健康检查
func ProvideHealthAggregator(i do.Injector) (*health.Aggregator, error) {
	agg := health.NewAggregator(0)

	if mgr, err := do.Invoke[*database.Manager](i); err == nil {
		agg.Register(health.NewChecker("database", mgr.Ping))
	} else {
		agg.Register(health.NewChecker("database", func(context.Context) error { return err }))
	}

	c, err := do.Invoke[*container.Container](i)
	agg.Register(health.NewChecker("container", func(context.Context) error {
		if err != nil {
			return err
		}
		if !c.Built() {
			return container.ErrNotBuilt
		}
		return nil
	}))
	return agg, nil
}
