// Package bean describes components managed by the container.
//
// A Descriptor plays the role of a class annotated for the container: it
// names the concrete type, whether the type is a service, which methods run
// inside a transaction, which capability interfaces it exposes, and how to
// build its transactional facade. Field injection points are read from
// struct tags:
//
//	type TransferServiceImpl struct {
//	    Dao AccountDao `inject:""`
//	}
package bean

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/KOMKZ/go-yogan-ioc/errcode"
)

// InjectTag marks a field for by-type injection
const InjectTag = "inject"

// ErrInvalidDescriptor descriptor is malformed
var ErrInvalidDescriptor = errcode.Register(errcode.New(
	20, 101, "ioc", "error.ioc.invalid_descriptor", "invalid component descriptor"))

// ServiceMarker 服务标记，Value 为显式指定的 bean 标识（可为空）
type ServiceMarker struct {
	Value string
}

// FacadeFunc builds the transactional facade for target.
// Calls that must be intercepted go through inv.
type FacadeFunc func(target any, inv Invoker) (any, error)

// ProxyKind 代理策略
type ProxyKind int

const (
	NoProxy        ProxyKind = iota // 未代理
	InterfaceProxy                  // facade 实现声明的能力接口
	EmbeddedProxy                   // facade 内嵌具体类型
)

func (k ProxyKind) String() string {
	switch k {
	case InterfaceProxy:
		return "interface"
	case EmbeddedProxy:
		return "embedded"
	default:
		return "none"
	}
}

// InjectPoint a field carrying the inject tag
type InjectPoint struct {
	Field reflect.StructField
	Index []int
}

// Descriptor 组件元数据
type Descriptor struct {
	Type          reflect.Type
	Service       *ServiceMarker
	New           func() any
	Interfaces    []reflect.Type
	Transactional []string
	Facade        FacadeFunc

	txSet map[string]struct{}
}

// Option configures a Descriptor
type Option func(*Descriptor)

// Of describes the concrete type T (usually a pointer to struct).
//
//	bean.Of[*TransferServiceImpl](
//	    bean.Service("transferService"),
//	    bean.Implements[TransferService](),
//	    bean.Transactional("Transfer"),
//	    bean.Facade(newTransferFacade),
//	)
func Of[T any](opts ...Option) *Descriptor {
	d := &Descriptor{Type: reflect.TypeOf((*T)(nil)).Elem()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Service marks the type as a service. An empty name derives the bean
// identifier from the type name.
func Service(name string) Option {
	return func(d *Descriptor) {
		d.Service = &ServiceMarker{Value: name}
	}
}

// Constructor sets the default initializer
func Constructor[T any](fn func() T) Option {
	return func(d *Descriptor) {
		d.New = func() any { return fn() }
	}
}

// Implements declares a capability interface I
func Implements[I any]() Option {
	return func(d *Descriptor) {
		d.Interfaces = append(d.Interfaces, reflect.TypeOf((*I)(nil)).Elem())
	}
}

// Transactional declares methods that run inside a transaction
func Transactional(methods ...string) Option {
	return func(d *Descriptor) {
		d.Transactional = append(d.Transactional, methods...)
		d.txSet = nil
	}
}

// Facade sets the typed facade constructor. T is the concrete type of the
// described component.
func Facade[T any](fn func(target T, inv Invoker) any) Option {
	return func(d *Descriptor) {
		d.Facade = func(target any, inv Invoker) (any, error) {
			typed, ok := target.(T)
			if !ok {
				var zero T
				return nil, fmt.Errorf("facade expects %T, got %T", zero, target)
			}
			return fn(typed, inv), nil
		}
	}
}

// IsService reports whether the service marker is present
func (d *Descriptor) IsService() bool {
	return d.Service != nil
}

// BeanName 返回 bean 标识：标记值优先，否则为类型简单名（去掉指针）
func (d *Descriptor) BeanName() string {
	if d.Service != nil && d.Service.Value != "" {
		return d.Service.Value
	}
	return SimpleName(d.Type)
}

// SimpleName returns the unqualified type name with pointers stripped
func SimpleName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// IsTransactional reports whether method is declared transactional
func (d *Descriptor) IsTransactional(method string) bool {
	if d.txSet == nil {
		d.txSet = make(map[string]struct{}, len(d.Transactional))
		for _, m := range d.Transactional {
			d.txSet[m] = struct{}{}
		}
	}
	_, ok := d.txSet[method]
	return ok
}

// HasTransactional reports whether at least one method is transactional
func (d *Descriptor) HasTransactional() bool {
	return len(d.Transactional) > 0
}

// TransactionalMethods returns the sorted, deduplicated method set
func (d *Descriptor) TransactionalMethods() []string {
	seen := make(map[string]struct{}, len(d.Transactional))
	methods := make([]string, 0, len(d.Transactional))
	for _, m := range d.Transactional {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// Injections lists the fields tagged for injection, in declaration order.
// Only pointer-to-struct types carry injection points.
func (d *Descriptor) Injections() []InjectPoint {
	st, ok := structOf(d.Type)
	if !ok {
		return nil
	}

	var points []InjectPoint
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if _, tagged := f.Tag.Lookup(InjectTag); tagged {
			points = append(points, InjectPoint{Field: f, Index: f.Index})
		}
	}
	return points
}

// Validate checks the descriptor against its type
func (d *Descriptor) Validate() error {
	if d == nil || d.Type == nil {
		return ErrInvalidDescriptor.WithMsg("descriptor has no type")
	}

	invalid := func(format string, args ...any) error {
		return ErrInvalidDescriptor.WithMsgf(format, args...).WithData("type", d.Type.String())
	}

	for _, iface := range d.Interfaces {
		if iface.Kind() != reflect.Interface {
			return invalid("%s: declared capability %s is not an interface", d.Type, iface)
		}
		if !d.Type.Implements(iface) {
			return invalid("%s does not implement %s", d.Type, iface)
		}
	}

	for _, m := range d.Transactional {
		if _, ok := d.Type.MethodByName(m); !ok {
			return invalid("%s has no exported method %q", d.Type, m)
		}
	}

	// 无接口时只能走内嵌代理，要求指针结构体
	if d.HasTransactional() && len(d.Interfaces) == 0 {
		if _, ok := structOf(d.Type); !ok {
			return invalid("%s: embedded proxy requires a pointer to struct", d.Type)
		}
	}

	return nil
}

// NewInstance runs the default initializer.
// Without New, pointer-to-struct types get a zero value from reflect.New.
func (d *Descriptor) NewInstance() (any, error) {
	if d.New == nil {
		if _, ok := structOf(d.Type); ok {
			return reflect.New(d.Type.Elem()).Interface(), nil
		}
		return nil, fmt.Errorf("%s has no default initializer", d.Type)
	}

	v := d.New()
	if v == nil {
		return nil, fmt.Errorf("initializer of %s returned nil", d.Type)
	}
	if vt := reflect.TypeOf(v); vt != d.Type {
		return nil, fmt.Errorf("initializer of %s returned %s", d.Type, vt)
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return nil, fmt.Errorf("initializer of %s returned a nil pointer", d.Type)
	}
	return v, nil
}

func structOf(t reflect.Type) (reflect.Type, bool) {
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		return nil, false
	}
	return t.Elem(), true
}
