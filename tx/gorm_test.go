package tx

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/KOMKZ/go-yogan-ioc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type ledger struct {
	ID   uint `gorm:"primaryKey"`
	Note string
}

func openDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "tx.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ledger{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func countRows(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Model(&ledger{}).Count(&n).Error)
	return n
}

func TestGormManager_Commit(t *testing.T) {
	db := openDB(t)
	m := NewGormManager(db, logger.NewTestCtxLogger())

	ctx, err := m.Begin(context.Background())
	require.NoError(t, err)
	assert.True(t, InTransaction(ctx))
	assert.NotEmpty(t, ID(ctx))

	require.NoError(t, DB(ctx, db).Create(&ledger{Note: "a"}).Error)
	require.NoError(t, m.Commit(ctx))

	assert.Equal(t, int64(1), countRows(t, db))
}

func TestGormManager_Rollback(t *testing.T) {
	db := openDB(t)
	m := NewGormManager(db, nil)

	ctx, err := m.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, DB(ctx, db).Create(&ledger{Note: "a"}).Error)
	require.NoError(t, m.Rollback(ctx))

	assert.Zero(t, countRows(t, db))
}

func TestGormManager_NestedSavepoint(t *testing.T) {
	db := openDB(t)
	m := NewGormManager(db, nil)

	outer, err := m.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, DB(outer, db).Create(&ledger{Note: "outer"}).Error)

	inner, err := m.Begin(outer)
	require.NoError(t, err)
	assert.Equal(t, ID(outer), ID(inner))
	require.NoError(t, DB(inner, db).Create(&ledger{Note: "inner"}).Error)
	require.NoError(t, m.Rollback(inner))

	inner2, err := m.Begin(outer)
	require.NoError(t, err)
	require.NoError(t, DB(inner2, db).Create(&ledger{Note: "inner2"}).Error)
	require.NoError(t, m.Commit(inner2))

	require.NoError(t, m.Commit(outer))

	var notes []string
	require.NoError(t, db.Model(&ledger{}).Order("id").Pluck("note", &notes).Error)
	assert.Equal(t, []string{"outer", "inner2"}, notes)
}

func TestGormManager_NoTransaction(t *testing.T) {
	m := NewGormManager(openDB(t), nil)
	ctx := context.Background()

	assert.True(t, errors.Is(m.Commit(ctx), ErrNoTransaction))
	assert.True(t, errors.Is(m.Rollback(ctx), ErrNoTransaction))
	assert.False(t, InTransaction(ctx))
	assert.Empty(t, ID(ctx))
}

func TestDB_Fallback(t *testing.T) {
	db := openDB(t)
	require.NoError(t, DB(context.Background(), db).Create(&ledger{Note: "x"}).Error)
	assert.Equal(t, int64(1), countRows(t, db))
}
