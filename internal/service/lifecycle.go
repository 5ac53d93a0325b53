package service

import (
	"context"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"
)

// saveDeletionFunc 持久化软删除状态的仓储方法
type saveDeletionFunc[T model.Entity] func(ctx context.Context, entity T, now time.Time) error

// softDelete 标记删除并只写回删除相关字段，重复删除刷新删除时间
func softDelete[T model.Entity](ctx context.Context, entity T, save saveDeletionFunc[T]) error {
	now := time.Now()
	model.MarkDeleted(entity, now)
	return save(ctx, entity, now)
}

// restoreDeleted 撤销删除，未删除的记录保持不变
func restoreDeleted[T model.Entity](ctx context.Context, entity T, save saveDeletionFunc[T]) error {
	if !entity.SoftDeleteState().IsDeleted {
		return nil
	}
	model.Restore(entity)
	return save(ctx, entity, time.Now())
}
