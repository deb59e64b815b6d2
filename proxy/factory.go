package proxy

import (
	"context"
	"fmt"
	"reflect"
	"runtime"

	"github.com/KOMKZ/go-yogan-ioc/bean"
	"github.com/KOMKZ/go-yogan-ioc/registry"
	"github.com/KOMKZ/go-yogan-ioc/tx"
	"go.uber.org/zap"
)

// Kind proxy strategy of a bean
type Kind = bean.ProxyKind

const (
	None          = bean.NoProxy
	KindInterface = bean.InterfaceProxy
	KindEmbedded  = bean.EmbeddedProxy
)

// Factory installs facades for transactional beans
type Factory struct {
	txm  tx.Manager
	inst *instruments
}

// NewFactory creates a factory. txm may be nil as long as no bean declares
// transactional methods.
func NewFactory(txm tx.Manager, opts ...Option) *Factory {
	return &Factory{txm: txm, inst: newInstruments(buildOptions(opts))}
}

// StrategyFor selects the proxy strategy of d
func StrategyFor(d *bean.Descriptor) Kind {
	if d == nil || !d.HasTransactional() {
		return None
	}
	if len(d.Interfaces) > 0 {
		return KindInterface
	}
	return KindEmbedded
}

// Apply replaces the instance of every transactional bean with its facade
func (f *Factory) Apply(ctx context.Context, reg *registry.Registry) error {
	for _, b := range reg.Beans() {
		facade, kind, err := f.Wrap(b)
		if err != nil {
			return err
		}
		if kind == None {
			continue
		}
		if err := reg.Replace(b.Name, facade, kind); err != nil {
			return err
		}
		f.inst.log.DebugCtx(ctx, "transactional proxy installed",
			zap.String("bean", b.Name),
			zap.String("strategy", kind.String()),
			zap.Strings("methods", b.Descriptor.TransactionalMethods()))
	}
	return nil
}

// Wrap builds the facade of b. Beans without transactional methods return
// (nil, None, nil).
func (f *Factory) Wrap(b *registry.Bean) (any, Kind, error) {
	kind := StrategyFor(b.Descriptor)
	if kind == None {
		return nil, None, nil
	}

	d := b.Descriptor
	proxyErr := ErrProxy.WithData("bean", b.Name).WithData("type", d.Type.String())

	if f.txm == nil {
		return nil, None, proxyErr.WithMsgf("%s: no transaction manager configured", b.Name)
	}
	if d.Facade == nil {
		return nil, None, proxyErr.WithMsgf("%s declares transactional methods but no facade", b.Name)
	}

	h := newHandler(b.Name, b.Target, d, f.txm, f.inst)
	facade, err := d.Facade(b.Target, h)
	if err != nil {
		return nil, None, proxyErr.Wrap(err)
	}
	if facade == nil {
		return nil, None, proxyErr.WithMsgf("%s: facade constructor returned nil", b.Name)
	}

	switch kind {
	case KindInterface:
		err = checkInterfaces(facade, d.Interfaces)
	case KindEmbedded:
		err = checkEmbedded(facade, b.Target, d.Type)
	}
	if err == nil {
		err = checkOverrides(facade, d.TransactionalMethods())
	}
	if err != nil {
		return nil, None, proxyErr.Wrap(err)
	}
	return facade, kind, nil
}

// checkInterfaces 接口代理：facade 必须实现全部声明接口
func checkInterfaces(facade any, ifaces []reflect.Type) error {
	ft := reflect.TypeOf(facade)
	for _, iface := range ifaces {
		if !ft.Implements(iface) {
			return fmt.Errorf("facade %s does not implement %s", ft, iface)
		}
	}
	return nil
}

// checkEmbedded 内嵌代理：facade 必须是内嵌具体类型的结构体，且内嵌值就是 target
func checkEmbedded(facade, target any, concrete reflect.Type) error {
	fv := reflect.ValueOf(facade)
	if fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			return fmt.Errorf("facade is a nil %s", fv.Type())
		}
		fv = fv.Elem()
	}
	if fv.Kind() != reflect.Struct {
		return fmt.Errorf("facade %s is not a struct", fv.Type())
	}

	for i := 0; i < fv.NumField(); i++ {
		field := fv.Type().Field(i)
		if !field.Anonymous || field.Type != concrete {
			continue
		}
		if fv.Field(i).Pointer() != reflect.ValueOf(target).Pointer() {
			return fmt.Errorf("facade %s embeds a different %s instance", fv.Type(), concrete)
		}
		return nil
	}
	return fmt.Errorf("facade %s does not embed %s", fv.Type(), concrete)
}

// checkOverrides 事务方法必须由 facade 自身声明；经内嵌提升的方法会绕过事务
func checkOverrides(facade any, methods []string) error {
	ft := reflect.TypeOf(facade)
	for _, name := range methods {
		if _, ok := ft.MethodByName(name); !ok {
			continue
		}
		if !declaredOn(ft, name) {
			return fmt.Errorf("facade %s does not override transactional method %s", ft, name)
		}
	}
	return nil
}

// declaredOn reports whether method name is written on t (or on its element
// type for value receivers) rather than promoted from an embedded field.
func declaredOn(t reflect.Type, name string) bool {
	m, ok := t.MethodByName(name)
	if !ok {
		return false
	}
	if !isWrapper(m) {
		return true
	}
	if t.Kind() == reflect.Ptr {
		if vm, ok := t.Elem().MethodByName(name); ok {
			return !isWrapper(vm)
		}
	}
	return false
}

// isWrapper 编译器为提升方法和指针接收者生成的包装函数
func isWrapper(m reflect.Method) bool {
	fn := runtime.FuncForPC(m.Func.Pointer())
	if fn == nil {
		return false
	}
	file, _ := fn.FileLine(fn.Entry())
	return file == "<autogenerated>"
}
