package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/KOMKZ/go-yogan-ioc/tx"
	"gorm.io/gorm"
)

// BaseRepository generic repository base.
// Every call runs on the transaction carried by ctx, when there is one.
type BaseRepository[T any] struct {
	db *gorm.DB
}

// NewBaseRepository creates a repository over db
func NewBaseRepository[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{db: db}
}

// SetDB binds the connection after construction
func (r *BaseRepository[T]) SetDB(db *gorm.DB) {
	r.db = db
}

// DB returns the connection bound to ctx
func (r *BaseRepository[T]) DB(ctx context.Context) *gorm.DB {
	return tx.DB(ctx, r.db)
}

// Create 新增记录
func (r *BaseRepository[T]) Create(ctx context.Context, entity *T) error {
	if err := r.DB(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

// FindByID 按主键查询，不存在时返回 ErrRecordNotFound
func (r *BaseRepository[T]) FindByID(ctx context.Context, id interface{}) (*T, error) {
	var entity T
	err := r.DB(ctx).First(&entity, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound.WithData("id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find record (id=%v): %w", id, err)
	}
	return &entity, nil
}

// FindOne 按条件查询单条
func (r *BaseRepository[T]) FindOne(ctx context.Context, query string, args ...interface{}) (*T, error) {
	var entity T
	err := r.DB(ctx).Where(query, args...).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find record: %w", err)
	}
	return &entity, nil
}

// FindAll 查询全部
func (r *BaseRepository[T]) FindAll(ctx context.Context) ([]T, error) {
	var entities []T
	if err := r.DB(ctx).Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("find all records: %w", err)
	}
	return entities, nil
}

// Update 保存记录
func (r *BaseRepository[T]) Update(ctx context.Context, entity *T) error {
	if err := r.DB(ctx).Save(entity).Error; err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return nil
}

// Delete 删除记录
func (r *BaseRepository[T]) Delete(ctx context.Context, id interface{}) error {
	var entity T
	if err := r.DB(ctx).Delete(&entity, id).Error; err != nil {
		return fmt.Errorf("delete record (id=%v): %w", id, err)
	}
	return nil
}

// Count 统计记录数
func (r *BaseRepository[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	var entity T
	if err := r.DB(ctx).Model(&entity).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}
