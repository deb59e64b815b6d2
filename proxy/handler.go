// Package proxy wraps beans that declare transactional methods behind a
// facade whose intercepted calls run inside a transaction.
package proxy

import (
	"context"
	"fmt"
	"reflect"

	"github.com/KOMKZ/go-yogan-ioc/bean"
	"github.com/KOMKZ/go-yogan-ioc/errcode"
	"github.com/KOMKZ/go-yogan-ioc/tx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	// ErrProxy the facade could not be built
	ErrProxy = errcode.Register(errcode.New(
		20, 401, "ioc", "error.ioc.proxy", "transactional proxy creation failed"))

	// ErrInvocation unknown method or arguments that do not fit
	ErrInvocation = errcode.Register(errcode.New(
		20, 402, "ioc", "error.ioc.invocation", "invalid proxied method invocation"))
)

// call outcomes recorded on spans and metrics
const (
	outcomeCommit       = "commit"
	outcomeRollback     = "rollback"
	outcomePanic        = "panic"
	outcomeBeginFailed  = "begin_failed"
	outcomeCommitFailed = "commit_failed"
)

var (
	ctxType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// Handler intercepts calls to one bean. Non-transactional methods go straight
// to the delegate; transactional ones are bracketed by Begin and Commit or
// Rollback on the transaction manager.
type Handler struct {
	beanName string
	delegate reflect.Value
	desc     *bean.Descriptor
	txm      tx.Manager
	inst     *instruments
}

var _ bean.Invoker = (*Handler)(nil)

// NewHandler creates a handler for target
func NewHandler(beanName string, target any, desc *bean.Descriptor, txm tx.Manager, opts ...Option) *Handler {
	return newHandler(beanName, target, desc, txm, newInstruments(buildOptions(opts)))
}

func newHandler(beanName string, target any, desc *bean.Descriptor, txm tx.Manager, inst *instruments) *Handler {
	return &Handler{
		beanName: beanName,
		delegate: reflect.ValueOf(target),
		desc:     desc,
		txm:      txm,
		inst:     inst,
	}
}

// Invoke implements bean.Invoker
func (h *Handler) Invoke(ctx context.Context, method string, args ...any) ([]any, error) {
	m := h.delegate.MethodByName(method)
	if !m.IsValid() {
		return nil, ErrInvocation.WithMsgf("%s has no method %q", h.beanName, method).
			WithData("bean", h.beanName).
			WithData("method", method)
	}

	in, takesCtx, err := h.bindArgs(ctx, method, m.Type(), args)
	if err != nil {
		return nil, err
	}

	if !h.desc.IsTransactional(method) {
		return splitResults(m.Call(in))
	}
	return h.invokeInTx(ctx, method, m, in, takesCtx)
}

// bindArgs checks arity and types, prepending ctx when the method takes one
func (h *Handler) bindArgs(ctx context.Context, method string, mt reflect.Type, args []any) ([]reflect.Value, bool, error) {
	takesCtx := mt.NumIn() > 0 && mt.In(0) == ctxType
	offset := 0
	if takesCtx {
		offset = 1
	}

	fixed := mt.NumIn() - offset
	if mt.IsVariadic() {
		fixed--
	}
	if len(args) < fixed || (!mt.IsVariadic() && len(args) > fixed) {
		return nil, false, ErrInvocation.
			WithMsgf("%s.%s expects %d arguments, got %d", h.beanName, method, fixed, len(args)).
			WithData("bean", h.beanName).
			WithData("method", method)
	}

	in := make([]reflect.Value, 0, len(args)+offset)
	if takesCtx {
		in = append(in, reflect.ValueOf(&ctx).Elem())
	}

	for i, arg := range args {
		var pt reflect.Type
		if mt.IsVariadic() && i >= fixed {
			pt = mt.In(mt.NumIn() - 1).Elem()
		} else {
			pt = mt.In(i + offset)
		}

		v, ok := convertArg(arg, pt)
		if !ok {
			return nil, false, ErrInvocation.
				WithMsgf("%s.%s argument %d: cannot use %T as %s", h.beanName, method, i, arg, pt).
				WithData("bean", h.beanName).
				WithData("method", method)
		}
		in = append(in, v)
	}
	return in, takesCtx, nil
}

func convertArg(arg any, pt reflect.Type) (reflect.Value, bool) {
	if arg == nil {
		switch pt.Kind() {
		case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(pt), true
		default:
			return reflect.Value{}, false
		}
	}
	v := reflect.ValueOf(arg)
	if !v.Type().AssignableTo(pt) {
		return reflect.Value{}, false
	}
	return v, true
}

// invokeInTx 在事务中调用；错误或 panic 时回滚，原样返回错误或重新 panic
func (h *Handler) invokeInTx(ctx context.Context, method string, m reflect.Value, in []reflect.Value, takesCtx bool) (results []any, err error) {
	ctx, span := h.inst.tracer.Start(ctx, h.beanName+"."+method,
		trace.WithAttributes(
			attribute.String("ioc.bean", h.beanName),
			attribute.String("ioc.method", method),
		))
	defer span.End()

	txCtx, beginErr := h.txm.Begin(ctx)
	if beginErr != nil {
		h.finish(ctx, span, method, outcomeBeginFailed, beginErr)
		return nil, beginErr
	}
	if takesCtx {
		in[0] = reflect.ValueOf(&txCtx).Elem()
	}

	defer func() {
		if r := recover(); r != nil {
			h.rollback(txCtx, method)
			h.finish(ctx, span, method, outcomePanic, fmt.Errorf("panic: %v", r))
			panic(r)
		}
	}()

	results, err = splitResults(m.Call(in))
	if err != nil {
		h.rollback(txCtx, method)
		h.finish(ctx, span, method, outcomeRollback, err)
		return results, err
	}

	if commitErr := h.txm.Commit(txCtx); commitErr != nil {
		h.rollback(txCtx, method)
		h.finish(ctx, span, method, outcomeCommitFailed, commitErr)
		return results, commitErr
	}

	h.finish(ctx, span, method, outcomeCommit, nil)
	return results, nil
}

func (h *Handler) rollback(txCtx context.Context, method string) {
	if err := h.txm.Rollback(txCtx); err != nil {
		h.inst.log.ErrorCtx(txCtx, "transaction rollback failed",
			zap.String("bean", h.beanName),
			zap.String("method", method),
			zap.Error(err))
	}
}

// finish records the outcome on the span, the counter and the log
func (h *Handler) finish(ctx context.Context, span trace.Span, method, outcome string, err error) {
	span.SetAttributes(attribute.String("ioc.outcome", outcome))
	h.inst.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("bean", h.beanName),
		attribute.String("method", method),
		attribute.String("outcome", outcome),
	))

	if err == nil {
		span.SetStatus(codes.Ok, "")
		h.inst.log.DebugCtx(ctx, "transactional call committed",
			zap.String("bean", h.beanName),
			zap.String("method", method))
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	h.inst.log.ErrorCtx(ctx, "transactional call failed",
		zap.String("bean", h.beanName),
		zap.String("method", method),
		zap.String("outcome", outcome),
		zap.Error(err))
}

// splitResults separates a trailing error result. Any trailing type that
// implements error counts; a nil pointer or interface is no error.
func splitResults(out []reflect.Value) ([]any, error) {
	var err error
	if n := len(out); n > 0 && out[n-1].Type().Implements(errorType) {
		last := out[n-1]
		if !isNilValue(last) {
			err = last.Interface().(error)
		}
		out = out[:n-1]
	}

	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results, err
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
