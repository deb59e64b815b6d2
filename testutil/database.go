package testutil

import (
	"path/filepath"
	"testing"

	"github.com/KOMKZ/go-yogan-ioc/database"
	"github.com/KOMKZ/go-yogan-ioc/logger"
	"gorm.io/gorm"
)

// NewSQLiteManager opens a database.Manager with one file-backed sqlite
// connection named "master" in a per-test temp dir, migrating models.
// Closed automatically when the test ends.
func NewSQLiteManager(t testing.TB, models ...interface{}) *database.Manager {
	t.Helper()

	cfg := database.DefaultConfig()
	cfg.DSN = filepath.Join(t.TempDir(), "test.db")

	m, err := database.NewManager(map[string]database.Config{"master": cfg}, logger.NewTestCtxLogger())
	if err != nil {
		t.Fatalf("创建数据库失败: %v", err)
	}
	t.Cleanup(func() { m.Close() })

	if len(models) > 0 {
		if err := m.DB("master").AutoMigrate(models...); err != nil {
			t.Fatalf("迁移表结构失败: %v", err)
		}
	}
	return m
}

// NewSQLiteDB is NewSQLiteManager returning the "master" connection
func NewSQLiteDB(t testing.TB, models ...interface{}) *gorm.DB {
	t.Helper()
	return NewSQLiteManager(t, models...).DB("master")
}

// DBHelper 数据库测试辅助工具
type DBHelper struct {
	DB *gorm.DB
}

// NewDBHelper 创建数据库辅助工具
func NewDBHelper(db *gorm.DB) *DBHelper {
	return &DBHelper{DB: db}
}

// DeleteAll 删除表中所有数据
func (h *DBHelper) DeleteAll(tableName string) error {
	return h.DB.Exec("DELETE FROM " + tableName).Error
}

// Count 统计记录数
func (h *DBHelper) Count(tableName string) (int64, error) {
	var count int64
	err := h.DB.Table(tableName).Count(&count).Error
	return count, err
}

// CountWhere 统计符合条件的记录数
func (h *DBHelper) CountWhere(tableName string, where string, args ...interface{}) (int64, error) {
	var count int64
	err := h.DB.Table(tableName).Where(where, args...).Count(&count).Error
	return count, err
}

// Seed 插入种子数据
func (h *DBHelper) Seed(data interface{}) error {
	return h.DB.Create(data).Error
}

// FindOne 查询单条记录
func (h *DBHelper) FindOne(dest interface{}, where string, args ...interface{}) error {
	return h.DB.Where(where, args...).First(dest).Error
}
