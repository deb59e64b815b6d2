package testutil

import (
	"context"
	"sync"
)

type txKey struct{}

// TxRecorder 记录事务调用顺序的事务管理器（测试用）
//
//	rec := testutil.NewTxRecorder()
//	c := container.New(catalog, container.WithTxManager(rec))
//	...
//	assert.Equal(t, []string{"begin", "rollback"}, rec.Events())
type TxRecorder struct {
	BeginErr    error
	CommitErr   error
	RollbackErr error

	mu     sync.Mutex
	events []string
	seq    int
}

// NewTxRecorder creates an empty recorder
func NewTxRecorder() *TxRecorder {
	return &TxRecorder{}
}

// Begin records "begin" and returns a context carrying a transaction number
func (r *TxRecorder) Begin(ctx context.Context) (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, "begin")
	if r.BeginErr != nil {
		return ctx, r.BeginErr
	}
	r.seq++
	return context.WithValue(ctx, txKey{}, r.seq), nil
}

// Commit records "commit"
func (r *TxRecorder) Commit(ctx context.Context) error {
	return r.record("commit", r.CommitErr)
}

// Rollback records "rollback"
func (r *TxRecorder) Rollback(ctx context.Context) error {
	return r.record("rollback", r.RollbackErr)
}

func (r *TxRecorder) record(event string, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return err
}

// Events returns a copy of the recorded events
func (r *TxRecorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]string, len(r.events))
	copy(events, r.events)
	return events
}

// Reset clears the recorded events
func (r *TxRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// TxNumber returns the transaction number carried by ctx, 0 when none
func TxNumber(ctx context.Context) int {
	n, _ := ctx.Value(txKey{}).(int)
	return n
}
