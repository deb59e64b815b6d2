package container

import (
	"context"
	"fmt"
	"reflect"

	"github.com/KOMKZ/go-yogan-ioc/bean"
	"github.com/KOMKZ/go-yogan-ioc/logger"
	"github.com/KOMKZ/go-yogan-ioc/registry"
	"go.uber.org/zap"
)

// injector 按类型解析并注入 inject 字段
type injector struct {
	log logger.Logger
}

func (i *injector) inject(ctx context.Context, reg *registry.Registry) error {
	for _, b := range reg.Beans() {
		for _, point := range b.Descriptor.Injections() {
			if err := i.resolve(ctx, reg, b, point); err != nil {
				return err
			}
		}
	}
	return nil
}

func (i *injector) resolve(ctx context.Context, reg *registry.Registry, b *registry.Bean, point bean.InjectPoint) error {
	field := point.Field
	fieldData := map[string]interface{}{
		"bean":  b.Name,
		"field": field.Name,
		"type":  field.Type.String(),
	}

	candidates := reg.GetAllByType(field.Type)
	switch len(candidates) {
	case 0:
		return ErrDependencyResolution.
			WithMsgf("no bean of type %s for %s.%s", field.Type, b.Name, field.Name).
			WithFields(fieldData)
	case 1:
	default:
		return ErrAmbiguousDependency.
			WithMsgf("%d beans of type %s for %s.%s", len(candidates), field.Type, b.Name, field.Name).
			WithFields(fieldData).
			WithData("candidates", len(candidates))
	}

	if err := bind(b.Target, point, candidates[0]); err != nil {
		return ErrDependencyResolution.Wrap(err).WithFields(fieldData)
	}

	i.log.DebugCtx(ctx, "dependency injected",
		zap.String("bean", b.Name),
		zap.String("field", field.Name),
		zap.String("type", field.Type.String()))
	return nil
}

// bind 优先调用 Set<Field> 方法，其次直接赋值导出字段
func bind(target any, point bean.InjectPoint, value any) error {
	tv := reflect.ValueOf(target)
	vv := reflect.ValueOf(value)
	field := point.Field

	if setter := tv.MethodByName("Set" + upperFirst(field.Name)); setter.IsValid() {
		st := setter.Type()
		if st.NumIn() == 1 && vv.Type().AssignableTo(st.In(0)) {
			out := setter.Call([]reflect.Value{vv})
			if len(out) > 0 {
				if err, ok := out[len(out)-1].Interface().(error); ok && err != nil {
					return err
				}
			}
			return nil
		}
	}

	if !field.IsExported() {
		return fmt.Errorf("field %s is unexported and has no usable setter Set%s", field.Name, upperFirst(field.Name))
	}
	tv.Elem().FieldByIndex(point.Index).Set(vv)
	return nil
}

func upperFirst(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
