package proxy

import (
	"context"
	"errors"
	"testing"

	"github.com/KOMKZ/go-yogan-ioc/bean"
	"github.com/KOMKZ/go-yogan-ioc/registry"
	"github.com/KOMKZ/go-yogan-ioc/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// saverFacade interface-strategy facade
type saverFacade struct {
	target *accountService
	inv    bean.Invoker
}

func (f *saverFacade) Save(ctx context.Context, v string) error {
	return bean.Call(ctx, f.inv, "Save", v)
}

func (f *saverFacade) Name() string { return f.target.Name() }

// txAccountService embedding-strategy facade
type txAccountService struct {
	*accountService
	inv bean.Invoker
}

func (f *txAccountService) Save(ctx context.Context, v string) error {
	return bean.Call(ctx, f.inv, "Save", v)
}

// bareAccountService embeds the target but forgets the Save override
type bareAccountService struct {
	*accountService
	inv bean.Invoker
}

// promotedSaver satisfies Saver only through the embedded target
type promotedSaver struct {
	*accountService
}

// valueAccountService overrides Save with a value receiver
type valueAccountService struct {
	*accountService
	inv bean.Invoker
}

func (f valueAccountService) Save(ctx context.Context, v string) error {
	return bean.Call(ctx, f.inv, "Save", v)
}

func putBean(t *testing.T, reg *registry.Registry, name string, target any, d *bean.Descriptor) {
	t.Helper()
	require.NoError(t, reg.Put(context.Background(), &registry.Bean{
		Name: name, Instance: target, Target: target, Descriptor: d,
	}))
}

func TestStrategyFor(t *testing.T) {
	assert.Equal(t, None, StrategyFor(bean.Of[*accountService]()))
	assert.Equal(t, None, StrategyFor(nil))
	assert.Equal(t, KindEmbedded, StrategyFor(bean.Of[*accountService](bean.Transactional("Save"))))
	assert.Equal(t, KindInterface, StrategyFor(bean.Of[*accountService](
		bean.Transactional("Save"), bean.Implements[Saver]())))
}

func TestFactory_InterfaceStrategy(t *testing.T) {
	rec := testutil.NewTxRecorder()
	reg := registry.New()
	svc := &accountService{}
	putBean(t, reg, "saver", svc, bean.Of[*accountService](
		bean.Implements[Saver](),
		bean.Transactional("Save"),
		bean.Facade(func(target *accountService, inv bean.Invoker) any {
			return &saverFacade{target: target, inv: inv}
		}),
	))

	require.NoError(t, NewFactory(rec).Apply(context.Background(), reg))

	b, _ := reg.Lookup("saver")
	assert.Equal(t, KindInterface, b.Proxy)
	assert.Same(t, svc, b.Target)

	saver, ok := b.Instance.(Saver)
	require.True(t, ok)
	require.NoError(t, saver.Save(context.Background(), "x"))
	assert.Equal(t, "svc", saver.Name())
	assert.Equal(t, []string{"x"}, svc.saved)
	assert.Equal(t, []string{"begin", "commit"}, rec.Events())
}

func TestFactory_EmbeddedStrategy(t *testing.T) {
	rec := testutil.NewTxRecorder()
	reg := registry.New()
	svc := &accountService{}
	putBean(t, reg, "svc", svc, bean.Of[*accountService](
		bean.Transactional("Save"),
		bean.Facade(func(target *accountService, inv bean.Invoker) any {
			return &txAccountService{accountService: target, inv: inv}
		}),
	))

	require.NoError(t, NewFactory(rec).Apply(context.Background(), reg))

	b, _ := reg.Lookup("svc")
	assert.Equal(t, KindEmbedded, b.Proxy)
	facade, ok := b.Instance.(*txAccountService)
	require.True(t, ok)

	// 非事务方法直接落到原始对象
	assert.Equal(t, "svc", facade.Name())
	assert.Empty(t, rec.Events())

	require.NoError(t, facade.Save(context.Background(), "y"))
	assert.Equal(t, []string{"y"}, facade.saved)
	assert.Equal(t, []string{"begin", "commit"}, rec.Events())
}

func TestFactory_MissingOverrideNamesMethod(t *testing.T) {
	rec := testutil.NewTxRecorder()
	reg := registry.New()
	svc := &accountService{}
	putBean(t, reg, "svc", svc, bean.Of[*accountService](
		bean.Transactional("Save"),
		bean.Facade(func(target *accountService, inv bean.Invoker) any {
			return &bareAccountService{accountService: target, inv: inv}
		}),
	))

	err := NewFactory(rec).Apply(context.Background(), reg)
	require.True(t, errors.Is(err, ErrProxy))
	assert.Contains(t, err.Error(), "does not override transactional method Save")
	assert.Empty(t, rec.Events())
}

func TestFactory_ValueReceiverOverride(t *testing.T) {
	rec := testutil.NewTxRecorder()
	reg := registry.New()
	svc := &accountService{}
	putBean(t, reg, "svc", svc, bean.Of[*accountService](
		bean.Transactional("Save"),
		bean.Facade(func(target *accountService, inv bean.Invoker) any {
			return &valueAccountService{accountService: target, inv: inv}
		}),
	))

	require.NoError(t, NewFactory(rec).Apply(context.Background(), reg))

	b, _ := reg.Lookup("svc")
	facade, ok := b.Instance.(*valueAccountService)
	require.True(t, ok)
	require.NoError(t, facade.Save(context.Background(), "z"))
	assert.Equal(t, []string{"begin", "commit"}, rec.Events())
}

func TestFactory_SkipsPlainBeans(t *testing.T) {
	reg := registry.New()
	svc := &accountService{}
	putBean(t, reg, "plain", svc, bean.Of[*accountService]())

	require.NoError(t, NewFactory(nil).Apply(context.Background(), reg))

	b, _ := reg.Lookup("plain")
	assert.Equal(t, None, b.Proxy)
	assert.Same(t, svc, b.Instance)
}

func TestFactory_Errors(t *testing.T) {
	other := &accountService{}

	tests := []struct {
		name string
		txm  *testutil.TxRecorder
		desc *bean.Descriptor
	}{
		{
			name: "no transaction manager",
			desc: bean.Of[*accountService](bean.Transactional("Save"),
				bean.Facade(func(target *accountService, inv bean.Invoker) any {
					return &txAccountService{accountService: target, inv: inv}
				})),
		},
		{
			name: "no facade",
			txm:  testutil.NewTxRecorder(),
			desc: bean.Of[*accountService](bean.Transactional("Save")),
		},
		{
			name: "facade misses interface",
			txm:  testutil.NewTxRecorder(),
			desc: bean.Of[*accountService](bean.Implements[Saver](), bean.Transactional("Save"),
				bean.Facade(func(target *accountService, inv bean.Invoker) any {
					return &struct{ inv bean.Invoker }{inv}
				})),
		},
		{
			name: "facade does not embed",
			txm:  testutil.NewTxRecorder(),
			desc: bean.Of[*accountService](bean.Transactional("Save"),
				bean.Facade(func(target *accountService, inv bean.Invoker) any {
					return &saverFacade{target: target, inv: inv}
				})),
		},
		{
			name: "facade embeds another instance",
			txm:  testutil.NewTxRecorder(),
			desc: bean.Of[*accountService](bean.Transactional("Save"),
				bean.Facade(func(target *accountService, inv bean.Invoker) any {
					return &txAccountService{accountService: other, inv: inv}
				})),
		},
		{
			name: "embedded facade without override",
			txm:  testutil.NewTxRecorder(),
			desc: bean.Of[*accountService](bean.Transactional("Save"),
				bean.Facade(func(target *accountService, inv bean.Invoker) any {
					return &bareAccountService{accountService: target, inv: inv}
				})),
		},
		{
			name: "interface facade promotes transactional method",
			txm:  testutil.NewTxRecorder(),
			desc: bean.Of[*accountService](bean.Implements[Saver](), bean.Transactional("Save"),
				bean.Facade(func(target *accountService, inv bean.Invoker) any {
					return &promotedSaver{accountService: target}
				})),
		},
		{
			name: "facade is nil",
			txm:  testutil.NewTxRecorder(),
			desc: bean.Of[*accountService](bean.Transactional("Save"),
				bean.Facade(func(target *accountService, inv bean.Invoker) any { return nil })),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := registry.New()
			svc := &accountService{}
			putBean(t, reg, "svc", svc, tt.desc)

			var f *Factory
			if tt.txm == nil {
				f = NewFactory(nil)
			} else {
				f = NewFactory(tt.txm)
			}

			err := f.Apply(context.Background(), reg)
			assert.True(t, errors.Is(err, ErrProxy))

			b, _ := reg.Lookup("svc")
			assert.Same(t, svc, b.Instance)
		})
	}
}
