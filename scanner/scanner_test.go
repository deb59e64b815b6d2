package scanner

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

type alpha struct{}
type beta struct{}
type gamma struct{}
type delta struct{}

func typesOf(descs []*bean.Descriptor) []reflect.Type {
	types := make([]reflect.Type, 0, len(descs))
	for _, d := range descs {
		types = append(types, d.Type)
	}
	return types
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func testCatalog() *Catalog {
	return NewCatalog().
		Descriptors("app", bean.Of[*alpha](bean.Service(""))).
		Add("app/dao", TypeUnit(bean.Of[*beta]()), ResourceUnit("schema.sql")).
		Add("app/dao/mysql", TypeUnit(bean.Of[*gamma]())).
		Descriptors("application", bean.Of[*delta]())
}

func TestScan_Recursive(t *testing.T) {
	res := New(testCatalog()).Scan(context.Background(), "app")

	assert.Empty(t, res.Failures)
	assert.Equal(t, []reflect.Type{typeOf[*alpha](), typeOf[*beta](), typeOf[*gamma]()}, typesOf(res.Descriptors))
}

func TestScan_NonRecursive(t *testing.T) {
	res := New(testCatalog(), WithRecursive(false)).Scan(context.Background(), "app/dao")

	assert.Equal(t, []reflect.Type{typeOf[*beta]()}, typesOf(res.Descriptors))
}

func TestScan_WholeCatalog(t *testing.T) {
	res := New(testCatalog()).Scan(context.Background(), "")
	assert.Len(t, res.Descriptors, 4)

	res = New(testCatalog()).Scan(context.Background(), "/app/")
	assert.Len(t, res.Descriptors, 3)
}

func TestScan_Deduplicates(t *testing.T) {
	cat := NewCatalog().
		Descriptors("a", bean.Of[*alpha](bean.Service("first"))).
		Descriptors("b", bean.Of[*alpha](bean.Service("second")))

	res := New(cat).Scan(context.Background(), "")
	require.Len(t, res.Descriptors, 1)
	assert.Equal(t, "first", res.Descriptors[0].BeanName())
}

func TestScan_UnknownRoot(t *testing.T) {
	tl := logger.NewTestCtxLogger()
	res := New(testCatalog(), WithLogger(tl)).Scan(context.Background(), "missing")

	assert.NotNil(t, res.Descriptors)
	assert.Empty(t, res.Descriptors)
	assert.Empty(t, res.Failures)
	assert.True(t, tl.HasLogWithField("WARN", "scan root not found", "root", "missing"))
}

func TestScan_FailingUnits(t *testing.T) {
	tl := logger.NewTestCtxLogger()
	cat := NewCatalog().Add("app",
		LazyUnit("broken", func() (*bean.Descriptor, error) { return nil, errors.New("cannot load") }),
		LazyUnit("panics", func() (*bean.Descriptor, error) { panic("boom") }),
		TypeUnit(bean.Of[*alpha](bean.Transactional("Missing"))),
		Unit{Name: "noloader", Kind: UnitType},
		TypeUnit(bean.Of[*beta]()),
	)

	res := New(cat, WithLogger(tl)).Scan(context.Background(), "app")

	assert.Equal(t, []reflect.Type{typeOf[*beta]()}, typesOf(res.Descriptors))
	require.Len(t, res.Failures, 4)
	for _, err := range res.Failures {
		assert.True(t, errors.Is(err, ErrScan))
	}
	assert.Equal(t, 4, tl.CountLogs("WARN"))
}

func TestCatalog_Namespaces(t *testing.T) {
	cat := testCatalog()
	assert.Equal(t, []string{"app", "app/dao", "app/dao/mysql", "application"}, cat.Namespaces())
	assert.Len(t, cat.Units("app/dao"), 2)
	assert.Empty(t, cat.Units("nope"))
}
