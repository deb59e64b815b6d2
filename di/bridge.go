package di

import (
	"github.com/KOMKZ/go-yogan-ioc/container"
	"github.com/samber/do/v2"
)

// ExportBeans 将容器中的 bean 以命名值注册到 samber/do
// 名称与 bean 标识相同；导出的是对外实例（代理优先）
func ExportBeans(injector do.Injector, c *container.Container) error {
	if !c.Built() {
		return container.ErrNotBuilt
	}
	for _, b := range c.Beans() {
		do.ProvideNamedValue(injector, b.Name, b.Instance)
	}
	return nil
}

// InvokeBean 获取导出的 bean 并断言为 T
func InvokeBean[T any](injector do.Injector, name string) (T, error) {
	var zero T
	inst, err := do.InvokeNamed[any](injector, name)
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, ErrComponentNotFound.WithMsgf("bean %s is %T", name, inst).WithData("bean", name)
	}
	return typed, nil
}
