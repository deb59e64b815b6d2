package registry

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/KOMKZ/go-yogan-ioc/bean"
	"github.com/KOMKZ/go-yogan-ioc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Repo interface{ Find() string }

type repoB struct{ id string }

func (r *repoB) Find() string { return r.id }

type serviceA struct{}

func newBean(name string, inst any) *Bean {
	return &Bean{Name: name, Instance: inst, Target: inst}
}

func TestRegistry_PutGet(t *testing.T) {
	r := New()
	ctx := context.Background()
	rb := &repoB{id: "b"}

	require.NoError(t, r.Put(ctx, newBean("repoB", rb)))

	got, ok := r.Get("repoB")
	assert.True(t, ok)
	assert.Same(t, rb, got)

	got, ok = r.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestRegistry_Collision(t *testing.T) {
	tl := logger.NewTestCtxLogger()
	r := New(WithLogger(tl))
	ctx := context.Background()

	first, second := &repoB{id: "1"}, &repoB{id: "2"}
	require.NoError(t, r.Put(ctx, newBean("x", first)))
	require.NoError(t, r.Put(ctx, newBean("y", &serviceA{})))
	require.NoError(t, r.Put(ctx, newBean("x", second)))

	got, _ := r.Get("x")
	assert.Same(t, second, got)
	assert.Equal(t, []string{"x", "y"}, r.Names())
	assert.Equal(t, 2, r.Len())
	assert.True(t, tl.HasLogWithField("WARN", "bean identifier collision, overwriting", "bean", "x"))
}

func TestRegistry_GetAllByType(t *testing.T) {
	r := New()
	ctx := context.Background()
	b1, b2 := &repoB{id: "1"}, &repoB{id: "2"}
	require.NoError(t, r.Put(ctx, newBean("b1", b1)))
	require.NoError(t, r.Put(ctx, newBean("a", &serviceA{})))
	require.NoError(t, r.Put(ctx, newBean("b2", b2)))

	repoType := reflect.TypeOf((*Repo)(nil)).Elem()
	assert.Equal(t, []any{b1, b2}, r.GetAllByType(repoType))
	assert.Len(t, r.GetAllByType(reflect.TypeOf(&serviceA{})), 1)

	none := r.GetAllByType(reflect.TypeOf(0))
	assert.NotNil(t, none)
	assert.Empty(t, none)
	assert.Empty(t, r.GetAllByType(nil))

	repos := AllOf[Repo](r)
	require.Len(t, repos, 2)
	assert.Equal(t, "1", repos[0].Find())
}

func TestRegistry_ReplaceAndTyped(t *testing.T) {
	r := New()
	ctx := context.Background()
	raw := &repoB{id: "raw"}
	require.NoError(t, r.Put(ctx, newBean("repo", raw)))

	facade := &repoB{id: "facade"}
	require.NoError(t, r.Replace("repo", facade, bean.InterfaceProxy))

	b, ok := r.Lookup("repo")
	require.True(t, ok)
	assert.Same(t, raw, b.Target)
	assert.Same(t, facade, b.Instance)
	assert.Equal(t, bean.InterfaceProxy, b.Proxy)

	typed, ok := GetTyped[Repo](r, "repo")
	assert.True(t, ok)
	assert.Equal(t, "facade", typed.Find())

	_, ok = GetTyped[*serviceA](r, "repo")
	assert.False(t, ok)

	err := r.Replace("missing", facade, bean.InterfaceProxy)
	assert.True(t, errors.Is(err, ErrBeanNotFound))
}

func TestRegistry_Sealed(t *testing.T) {
	r := New()
	ctx := context.Background()
	require.NoError(t, r.Put(ctx, newBean("a", &serviceA{})))
	r.Seal()

	assert.True(t, r.Sealed())
	assert.True(t, errors.Is(r.Put(ctx, newBean("b", &serviceA{})), ErrSealed))
	assert.True(t, errors.Is(r.Replace("a", &serviceA{}, bean.EmbeddedProxy), ErrSealed))

	_, ok := r.Get("a")
	assert.True(t, ok)
}
