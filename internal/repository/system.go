package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"

	"gorm.io/gorm"
)

// SystemRepository 系统仓储接口
type SystemRepository interface {
	Create(ctx context.Context, system *model.System) error
	GetByUUID(ctx context.Context, uuid string) (*model.System, error)
	GetByCode(ctx context.Context, code string) (*model.System, error)
	Update(ctx context.Context, system *model.System, fields ...string) error
	SaveDeletion(ctx context.Context, system *model.System, now time.Time) error
	List(ctx context.Context, filter *model.SystemFilter, offset, limit int) ([]model.System, int64, error)
	FindByUUIDs(ctx context.Context, uuids []string) ([]model.System, error)
	// ListReachable 用户直接关联或通过启用角色可访问的系统
	ListReachable(ctx context.Context, userUUID string) ([]model.System, error)
}

// systemRepository 系统仓储实现
type systemRepository struct {
	db *gorm.DB
}

// NewSystemRepository 创建系统仓储实例
func NewSystemRepository(db *gorm.DB) SystemRepository {
	return &systemRepository{db: db}
}

// Create 创建系统
func (r *systemRepository) Create(ctx context.Context, system *model.System) error {
	return r.db.WithContext(ctx).Create(system).Error
}

// GetByUUID 通过uuid获取系统（包含已删除）
func (r *systemRepository) GetByUUID(ctx context.Context, uuid string) (*model.System, error) {
	var system model.System
	if err := r.db.WithContext(ctx).Preload("Creator").Where("uuid = ?", uuid).First(&system).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &system, nil
}

// GetByCode 通过系统码获取（包含已删除）
func (r *systemRepository) GetByCode(ctx context.Context, code string) (*model.System, error) {
	var system model.System
	if err := r.db.WithContext(ctx).Where("system_code = ?", code).First(&system).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &system, nil
}

// Update 更新指定字段
func (r *systemRepository) Update(ctx context.Context, system *model.System, fields ...string) error {
	query := r.db.WithContext(ctx).Model(system).Omit("Creator")
	if len(fields) > 0 {
		query = query.Select(fields)
	}
	return query.Updates(system).Error
}

// SaveDeletion 持久化软删除状态
func (r *systemRepository) SaveDeletion(ctx context.Context, system *model.System, now time.Time) error {
	return saveDeletionState(ctx, r.db, system, now)
}

// List 获取系统列表
func (r *systemRepository) List(ctx context.Context, filter *model.SystemFilter, offset, limit int) ([]model.System, int64, error) {
	var systems []model.System
	var total int64

	query := r.db.WithContext(ctx).Model(&model.System{}).Scopes(notDeleted("systems"))
	if filter != nil {
		query = icontains(query, "system_name", filter.SystemName)
		query = icontains(query, "system_code", filter.SystemCode)
		query = createdByUnified(query, "systems", filter.CreatedBy)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Creator").Order("create_at DESC").Scopes(paginate(offset, limit)).Find(&systems).Error
	if err != nil {
		return nil, 0, err
	}
	return systems, total, nil
}

// FindByUUIDs 批量获取未删除的系统
func (r *systemRepository) FindByUUIDs(ctx context.Context, uuids []string) ([]model.System, error) {
	var systems []model.System
	if len(uuids) == 0 {
		return systems, nil
	}
	err := r.db.WithContext(ctx).Scopes(notDeleted("systems")).Where("uuid IN ?", uuids).Find(&systems).Error
	return systems, err
}

// ListReachable 用户直接关联或通过启用角色可访问的系统，按系统码排序
func (r *systemRepository) ListReachable(ctx context.Context, userUUID string) ([]model.System, error) {
	db := r.db.WithContext(ctx)
	viaRoles := db.Session(&gorm.Session{NewDB: true}).
		Model(&model.Role{}).
		Select("roles.system_uuid").
		Joins("JOIN user_roles ON user_roles.role_uuid = roles.uuid").
		Where("user_roles.user_uuid = ? AND roles.is_enable = ? AND roles.is_deleted = ?", userUUID, true, false)
	direct := db.Session(&gorm.Session{NewDB: true}).
		Model(&model.UserSystem{}).
		Select("system_uuid").
		Where("user_uuid = ?", userUUID)

	var systems []model.System
	err := db.Scopes(notDeleted("systems")).
		Where("uuid IN (?) OR uuid IN (?)", viaRoles, direct).
		Order("system_code ASC").
		Find(&systems).Error
	return systems, err
}
