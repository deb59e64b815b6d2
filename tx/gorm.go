package tx

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-ioc/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ctxKey struct{}

// state 当前上下文中的事务
type state struct {
	id        string
	db        *gorm.DB
	depth     int
	savepoint string // 嵌套事务使用的保存点，顶层为空
}

// GormManager Manager backed by a gorm connection.
// Nested Begin calls on a transactional context create savepoints.
type GormManager struct {
	db  *gorm.DB
	log logger.Logger
}

// NewGormManager creates a GormManager over db
func NewGormManager(db *gorm.DB, log logger.Logger) *GormManager {
	return &GormManager{db: db, log: logger.OrNop(log)}
}

// Begin 开启事务；已在事务中时创建保存点
func (m *GormManager) Begin(ctx context.Context) (context.Context, error) {
	if parent := fromContext(ctx); parent != nil {
		name := fmt.Sprintf("sp_%d", parent.depth+1)
		if err := parent.db.SavePoint(name).Error; err != nil {
			return ctx, ErrBegin.Wrap(err).WithData("tx_id", parent.id)
		}
		m.log.DebugCtx(ctx, "savepoint created",
			zap.String("tx_id", parent.id),
			zap.String("savepoint", name))
		return context.WithValue(ctx, ctxKey{}, &state{
			id:        parent.id,
			db:        parent.db,
			depth:     parent.depth + 1,
			savepoint: name,
		}), nil
	}

	txDB := m.db.WithContext(ctx).Begin()
	if txDB.Error != nil {
		return ctx, ErrBegin.Wrap(txDB.Error)
	}

	st := &state{id: uuid.NewString(), db: txDB}
	m.log.DebugCtx(ctx, "transaction started", zap.String("tx_id", st.id))
	return context.WithValue(ctx, ctxKey{}, st), nil
}

// Commit 提交事务；保存点上的提交由外层事务负责
func (m *GormManager) Commit(ctx context.Context) error {
	st := fromContext(ctx)
	if st == nil {
		return ErrNoTransaction
	}
	if st.savepoint != "" {
		return nil
	}
	if err := st.db.Commit().Error; err != nil {
		return err
	}
	m.log.DebugCtx(ctx, "transaction committed", zap.String("tx_id", st.id))
	return nil
}

// Rollback 回滚事务或回滚到保存点
func (m *GormManager) Rollback(ctx context.Context) error {
	st := fromContext(ctx)
	if st == nil {
		return ErrNoTransaction
	}
	if st.savepoint != "" {
		return st.db.RollbackTo(st.savepoint).Error
	}
	if err := st.db.Rollback().Error; err != nil {
		return err
	}
	m.log.DebugCtx(ctx, "transaction rolled back", zap.String("tx_id", st.id))
	return nil
}

// DB returns the connection bound to ctx: the active transaction if any,
// otherwise fallback.
func DB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if st := fromContext(ctx); st != nil {
		return st.db.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}

// ID returns the transaction id carried by ctx, or ""
func ID(ctx context.Context) string {
	if st := fromContext(ctx); st != nil {
		return st.id
	}
	return ""
}

// InTransaction reports whether ctx carries a transaction
func InTransaction(ctx context.Context) bool {
	return fromContext(ctx) != nil
}

func fromContext(ctx context.Context) *state {
	if ctx == nil {
		return nil
	}
	st, _ := ctx.Value(ctxKey{}).(*state)
	return st
}
