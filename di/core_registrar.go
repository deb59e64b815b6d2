package di

import (
	"github.com/KOMKZ/go-yogan-ioc/container"
	"github.com/KOMKZ/go-yogan-ioc/logger"
	"github.com/KOMKZ/go-yogan-ioc/scanner"
	"github.com/samber/do/v2"
)

// RegisterCoreProviders registers every provider, by dependency layer.
// All providers are lazy; nothing is opened until first Invoke.
func RegisterCoreProviders(injector do.Injector, opts ConfigOptions, catalog *scanner.Catalog, containerOpts ...container.Option) {
	// Layer 0: Config
	do.Provide(injector, ProvideConfigLoader(opts))
	do.Provide(injector, ProvideContainerConfig)

	// Layer 1: Logger
	do.Provide(injector, ProvideLoggerManager)
	do.Provide(injector, ProvideCtxLogger(logger.ModuleIOC))
	do.Provide(injector, ProvideTelemetryManager)

	// Layer 2: Database, Transactions
	do.Provide(injector, ProvideDatabaseManager)
	do.Provide(injector, ProvideDefaultDB)
	do.Provide(injector, ProvideTxManager)

	// Layer 3: Container
	do.Provide(injector, ProvideContainer(catalog, containerOpts...))
	do.Provide(injector, ProvideHealthAggregator)
}
