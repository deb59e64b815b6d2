// Package registry holds the live beans of a container, keyed by identifier.
//
// The registry is written by a single goroutine while the container is being
// built and sealed afterwards; reads after Seal need no synchronisation.
package registry

import (
	"context"
	"reflect"

	"github.com/KOMKZ/go-yogan-ioc/bean"
	"github.com/KOMKZ/go-yogan-ioc/errcode"
	"github.com/KOMKZ/go-yogan-ioc/logger"
	"go.uber.org/zap"
)

// ErrSealed write after the registry was sealed
var ErrSealed = errcode.Register(errcode.New(
	20, 501, "ioc", "error.ioc.registry_sealed", "bean registry is sealed"))

// ErrBeanNotFound no bean under the given identifier
var ErrBeanNotFound = errcode.Register(errcode.New(
	20, 502, "ioc", "error.ioc.bean_not_found", "bean not found"))

// Bean a live bean
type Bean struct {
	Name       string
	Instance   any // 对外可见的对象（原始对象或代理）
	Target     any // 原始对象
	Descriptor *bean.Descriptor
	Proxy      bean.ProxyKind
}

// Registry bean 标识 -> bean
type Registry struct {
	beans  map[string]*Bean
	order  []string
	sealed bool
	log    logger.Logger
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger used for collision warnings
func WithLogger(l logger.Logger) Option {
	return func(r *Registry) {
		r.log = l
	}
}

// New creates an empty registry
func New(opts ...Option) *Registry {
	r := &Registry{beans: make(map[string]*Bean)}
	for _, opt := range opts {
		opt(r)
	}
	r.log = logger.OrNop(r.log)
	return r
}

// Put inserts b. An existing bean with the same identifier is overwritten
// in place; the collision is logged, not rejected.
func (r *Registry) Put(ctx context.Context, b *Bean) error {
	if r.sealed {
		return ErrSealed.WithData("bean", b.Name)
	}

	if prev, exists := r.beans[b.Name]; exists {
		r.log.WarnCtx(ctx, "bean identifier collision, overwriting",
			zap.String("bean", b.Name),
			zap.String("previous", typeName(prev.Target)),
			zap.String("current", typeName(b.Target)))
	} else {
		r.order = append(r.order, b.Name)
	}

	r.beans[b.Name] = b
	return nil
}

// Replace swaps the visible instance of an existing bean
func (r *Registry) Replace(name string, instance any, kind bean.ProxyKind) error {
	if r.sealed {
		return ErrSealed.WithData("bean", name)
	}
	b, ok := r.beans[name]
	if !ok {
		return ErrBeanNotFound.WithData("bean", name)
	}
	b.Instance = instance
	b.Proxy = kind
	return nil
}

// Get 按标识获取实例，不存在时返回 false
func (r *Registry) Get(name string) (any, bool) {
	b, ok := r.beans[name]
	if !ok {
		return nil, false
	}
	return b.Instance, true
}

// Lookup returns the full bean record
func (r *Registry) Lookup(name string) (*Bean, bool) {
	b, ok := r.beans[name]
	return b, ok
}

// GetAllByType returns every instance assignable to t, in insertion order.
// Never nil.
func (r *Registry) GetAllByType(t reflect.Type) []any {
	result := make([]any, 0)
	if t == nil {
		return result
	}
	for _, name := range r.order {
		inst := r.beans[name].Instance
		if inst != nil && reflect.TypeOf(inst).AssignableTo(t) {
			result = append(result, inst)
		}
	}
	return result
}

// Beans returns the beans in insertion order
func (r *Registry) Beans() []*Bean {
	beans := make([]*Bean, 0, len(r.order))
	for _, name := range r.order {
		beans = append(beans, r.beans[name])
	}
	return beans
}

// Names returns the identifiers in insertion order
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len number of beans
func (r *Registry) Len() int {
	return len(r.order)
}

// Seal forbids further writes
func (r *Registry) Seal() {
	r.sealed = true
}

// Sealed reports whether Seal was called
func (r *Registry) Sealed() bool {
	return r.sealed
}

// GetTyped 泛型获取：不存在或类型不匹配时返回 false
func GetTyped[T any](r *Registry, name string) (T, bool) {
	var zero T
	inst, ok := r.Get(name)
	if !ok {
		return zero, false
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// AllOf returns every instance assignable to T, in insertion order
func AllOf[T any](r *Registry) []T {
	all := r.GetAllByType(reflect.TypeOf((*T)(nil)).Elem())
	result := make([]T, 0, len(all))
	for _, inst := range all {
		result = append(result, inst.(T))
	}
	return result
}

func typeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}
