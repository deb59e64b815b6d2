// Package container runs the bean lifecycle pipeline and exposes the built
// beans.
//
// Build goes through four stages on a private registry:
//
//	scan -> instantiate -> proxy -> inject
//
// Proxying precedes injection so dependents receive facades. Only a fully
// successful Build is published; afterwards the registry is sealed and the
// container is safe for concurrent reads.
package container

import (
	"context"
	"reflect"

	"github.com/KOMKZ/go-yogan-ioc/logger"
	"github.com/KOMKZ/go-yogan-ioc/proxy"
	"github.com/KOMKZ/go-yogan-ioc/registry"
	"github.com/KOMKZ/go-yogan-ioc/scanner"
	"github.com/KOMKZ/go-yogan-ioc/tx"
	"go.uber.org/zap"
)

// Container IoC 容器
type Container struct {
	catalog   *scanner.Catalog
	log       logger.Logger
	txm       tx.Manager
	recursive bool
	proxyOpts []proxy.Option

	reg      *registry.Registry // nil until built
	failures []error
}

// Option configures a Container
type Option func(*Container)

// WithLogger sets the logger shared by every stage
func WithLogger(l logger.Logger) Option {
	return func(c *Container) {
		c.log = l
	}
}

// WithTxManager sets the transaction manager used by transactional facades
func WithTxManager(m tx.Manager) Option {
	return func(c *Container) {
		c.txm = m
	}
}

// WithRecursive toggles sub-namespace scanning (default true)
func WithRecursive(recursive bool) Option {
	return func(c *Container) {
		c.recursive = recursive
	}
}

// WithProxyOptions passes options to the proxy factory (tracing, metrics)
func WithProxyOptions(opts ...proxy.Option) Option {
	return func(c *Container) {
		c.proxyOpts = append(c.proxyOpts, opts...)
	}
}

// New creates an unbuilt container over catalog
func New(catalog *scanner.Catalog, opts ...Option) *Container {
	c := &Container{catalog: catalog, recursive: true}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logger.OrNop(c.log)
	return c
}

// Build runs the pipeline for every component under root. A failed Build
// leaves the container unbuilt.
func (c *Container) Build(ctx context.Context, root string) error {
	if c.reg != nil {
		return ErrAlreadyBuilt
	}

	c.log.InfoCtx(ctx, "container build started", zap.String("root", root))

	result := scanner.New(c.catalog,
		scanner.WithRecursive(c.recursive),
		scanner.WithLogger(c.log),
	).Scan(ctx, root)

	reg := registry.New(registry.WithLogger(c.log))

	if err := (&instantiator{log: c.log}).instantiate(ctx, result.Descriptors, reg); err != nil {
		return c.fail(ctx, "instantiate", err)
	}

	opts := append([]proxy.Option{proxy.WithLogger(c.log)}, c.proxyOpts...)
	if err := proxy.NewFactory(c.txm, opts...).Apply(ctx, reg); err != nil {
		return c.fail(ctx, "proxy", err)
	}

	if err := (&injector{log: c.log}).inject(ctx, reg); err != nil {
		return c.fail(ctx, "inject", err)
	}

	reg.Seal()
	c.reg = reg
	c.failures = result.Failures

	c.log.InfoCtx(ctx, "container build finished",
		zap.String("root", root),
		zap.Int("beans", reg.Len()),
		zap.Int("scan_failures", len(result.Failures)))
	return nil
}

func (c *Container) fail(ctx context.Context, stage string, err error) error {
	c.log.ErrorCtx(ctx, "container build failed", zap.String("stage", stage), zap.Error(err))
	return err
}

// Built reports whether Build succeeded
func (c *Container) Built() bool {
	return c.reg != nil
}

// GetBean 按标识获取 bean；不存在或未构建时返回 false
func (c *Container) GetBean(name string) (any, bool) {
	if c.reg == nil {
		return nil, false
	}
	return c.reg.Get(name)
}

// GetBeanByType returns every bean assignable to t, in registration order.
// Never nil.
func (c *Container) GetBeanByType(t reflect.Type) []any {
	if c.reg == nil {
		return []any{}
	}
	return c.reg.GetAllByType(t)
}

// Names returns the bean identifiers in registration order
func (c *Container) Names() []string {
	if c.reg == nil {
		return nil
	}
	return c.reg.Names()
}

// Beans returns the bean records in registration order
func (c *Container) Beans() []*registry.Bean {
	if c.reg == nil {
		return nil
	}
	return c.reg.Beans()
}

// ScanFailures returns the non-fatal scan errors of the last Build
func (c *Container) ScanFailures() []error {
	return c.failures
}

// Bean 泛型获取 bean
func Bean[T any](c *Container, name string) (T, error) {
	var zero T
	if c.reg == nil {
		return zero, ErrNotBuilt
	}
	inst, ok := c.reg.Get(name)
	if !ok {
		return zero, registry.ErrBeanNotFound.WithData("bean", name)
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, registry.ErrBeanNotFound.
			WithMsgf("bean %s is %T, not %s", name, inst, reflect.TypeOf((*T)(nil)).Elem()).
			WithData("bean", name)
	}
	return typed, nil
}

// BeansOf returns every bean assignable to T
func BeansOf[T any](c *Container) []T {
	if c.reg == nil {
		return []T{}
	}
	return registry.AllOf[T](c.reg)
}
