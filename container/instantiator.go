package container

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-ioc/bean"
	"github.com/KOMKZ/go-yogan-ioc/logger"
	"github.com/KOMKZ/go-yogan-ioc/registry"
	"go.uber.org/zap"
)

// instantiator 为每个服务描述构造单例并注册
type instantiator struct {
	log logger.Logger
}

func (i *instantiator) instantiate(ctx context.Context, descs []*bean.Descriptor, reg *registry.Registry) error {
	for _, d := range descs {
		if !d.IsService() {
			continue
		}

		name := d.BeanName()
		inst, err := construct(d)
		if err != nil {
			return ErrInstantiation.Wrap(err).
				WithData("bean", name).
				WithData("type", d.Type.String())
		}

		if err := reg.Put(ctx, &registry.Bean{
			Name:       name,
			Instance:   inst,
			Target:     inst,
			Descriptor: d,
		}); err != nil {
			return err
		}
		i.log.DebugCtx(ctx, "bean instantiated",
			zap.String("bean", name),
			zap.String("type", d.Type.String()))
	}
	return nil
}

// construct runs the initializer, converting a panic into an error
func construct(d *bean.Descriptor) (inst any, err error) {
	defer func() {
		if r := recover(); r != nil {
			inst = nil
			err = fmt.Errorf("initializer of %s panicked: %v", d.Type, r)
		}
	}()
	return d.NewInstance()
}
