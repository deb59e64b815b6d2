// Package tx defines the transaction manager consumed by transactional
// proxies, plus a gorm-backed implementation.
//
// Transaction state travels in context.Context: Begin returns a derived
// context that later Commit/Rollback calls and data access code receive.
package tx

import (
	"context"

	"github.com/KOMKZ/go-yogan-ioc/errcode"
)

// Manager 事务管理器
type Manager interface {
	// Begin starts a transaction and returns the context that carries it
	Begin(ctx context.Context) (context.Context, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

var (
	// ErrNoTransaction commit or rollback without an active transaction
	ErrNoTransaction = errcode.Register(errcode.New(
		22, 101, "tx", "error.tx.no_transaction", "no active transaction in context"))

	// ErrBegin the transaction could not be started
	ErrBegin = errcode.Register(errcode.New(
		22, 102, "tx", "error.tx.begin", "failed to begin transaction"))
)
