package bean

import (
	"context"
	"reflect"

	"github.com/KOMKZ/go-yogan-ioc/errcode"
)

// ErrResult the invoked method did not yield the result the facade expects
var ErrResult = errcode.Register(errcode.New(
	20, 103, "ioc", "error.ioc.result", "unexpected method result"))

// Invoker dispatches a method call by name.
//
// args exclude a leading context.Context; the invoker passes ctx (or a
// derived one) when the method's first parameter is a context. The returned
// slice holds the method's results minus a trailing error, which is
// returned as err.
type Invoker interface {
	Invoke(ctx context.Context, method string, args ...any) ([]any, error)
}

// Call invokes a method whose only result is an error
func Call(ctx context.Context, inv Invoker, method string, args ...any) error {
	_, err := inv.Invoke(ctx, method, args...)
	return err
}

// Call1 invokes a method returning (R, error) or R. A missing result or one
// that is not an R is an ErrResult; the method's own error takes precedence.
func Call1[R any](ctx context.Context, inv Invoker, method string, args ...any) (R, error) {
	var r R
	results, err := inv.Invoke(ctx, method, args...)
	if len(results) == 0 {
		if err != nil {
			return r, err
		}
		return r, ErrResult.WithMsgf("%s returned no result, want %s", method, typeOf[R]()).
			WithData("method", method)
	}

	// nil 结果对应 R 的零值（指针、接口等）
	if results[0] == nil {
		return r, err
	}
	typed, ok := results[0].(R)
	if !ok {
		if err != nil {
			return r, err
		}
		return r, ErrResult.WithMsgf("%s returned %T, want %s", method, results[0], typeOf[R]()).
			WithData("method", method)
	}
	return typed, err
}

func typeOf[R any]() reflect.Type {
	return reflect.TypeOf((*R)(nil)).Elem()
}
