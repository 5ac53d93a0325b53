package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"

	"gorm.io/gorm"
)

// saveDeletionState 只持久化软删除相关的三个字段
func saveDeletionState(ctx context.Context, db *gorm.DB, entity model.Entity, now time.Time) error {
	state := entity.SoftDeleteState()
	return db.WithContext(ctx).
		Model(entity).
		Where("uuid = ?", entity.PrimaryKey()).
		Select("is_deleted", "deleted_at", "update_at").
		Updates(map[string]interface{}{
			"is_deleted": state.IsDeleted,
			"deleted_at": state.DeletedAt,
			"update_at":  now,
		}).Error
}

// notDeleted 默认查询条件
func notDeleted(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table+".is_deleted = ?", false)
	}
}

// icontains 大小写不敏感的包含匹配
func icontains(db *gorm.DB, column, value string) *gorm.DB {
	value = strings.TrimSpace(value)
	if value == "" {
		return db
	}
	return db.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(value)+"%")
}

// createdByUnified 按创建人的unified_uuid过滤
func createdByUnified(db *gorm.DB, table, unifiedUUID string) *gorm.DB {
	if unifiedUUID == "" {
		return db
	}
	return db.Where(table+".created_by IN (?)",
		db.Session(&gorm.Session{NewDB: true}).Model(&model.User{}).Select("uuid").Where("unified_uuid = ?", unifiedUUID))
}

// paginate 分页
func paginate(offset, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset).Limit(limit)
	}
}
