package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"

	"gorm.io/gorm"
)

// PermissionRepository 权限码仓储接口
type PermissionRepository interface {
	Create(ctx context.Context, permission *model.CustomPermission) error
	GetByUUID(ctx context.Context, uuid string) (*model.CustomPermission, error)
	GetByCode(ctx context.Context, code string) (*model.CustomPermission, error)
	Update(ctx context.Context, permission *model.CustomPermission, fields ...string) error
	SaveDeletion(ctx context.Context, permission *model.CustomPermission, now time.Time) error
	List(ctx context.Context, filter *model.PermissionFilter, offset, limit int) ([]model.CustomPermission, int64, error)
	FindByUUIDs(ctx context.Context, uuids []string) ([]model.CustomPermission, error)
}

// permissionRepository 权限码仓储实现
type permissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository 创建权限码仓储实例
func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

// Create 创建权限码
func (r *permissionRepository) Create(ctx context.Context, permission *model.CustomPermission) error {
	return r.db.WithContext(ctx).Create(permission).Error
}

// GetByUUID 通过uuid获取权限码（包含已删除）
func (r *permissionRepository) GetByUUID(ctx context.Context, uuid string) (*model.CustomPermission, error) {
	var permission model.CustomPermission
	if err := r.db.WithContext(ctx).Preload("Creator").Where("uuid = ?", uuid).First(&permission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &permission, nil
}

// GetByCode 通过权限码获取（包含已删除）
func (r *permissionRepository) GetByCode(ctx context.Context, code string) (*model.CustomPermission, error) {
	var permission model.CustomPermission
	if err := r.db.WithContext(ctx).Where("permission_code = ?", code).First(&permission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &permission, nil
}

// Update 更新指定字段
func (r *permissionRepository) Update(ctx context.Context, permission *model.CustomPermission, fields ...string) error {
	query := r.db.WithContext(ctx).Model(permission).Omit("Creator")
	if len(fields) > 0 {
		query = query.Select(fields)
	}
	return query.Updates(permission).Error
}

// SaveDeletion 持久化软删除状态
func (r *permissionRepository) SaveDeletion(ctx context.Context, permission *model.CustomPermission, now time.Time) error {
	return saveDeletionState(ctx, r.db, permission, now)
}

// List 获取权限码列表
func (r *permissionRepository) List(ctx context.Context, filter *model.PermissionFilter, offset, limit int) ([]model.CustomPermission, int64, error) {
	var permissions []model.CustomPermission
	var total int64

	query := r.db.WithContext(ctx).Model(&model.CustomPermission{}).Scopes(notDeleted("custom_permissions"))
	if filter != nil {
		query = icontains(query, "permission_name", filter.PermissionName)
		query = icontains(query, "permission_code", filter.PermissionCode)
		query = createdByUnified(query, "custom_permissions", filter.CreatedBy)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Creator").Order("create_at DESC").Scopes(paginate(offset, limit)).Find(&permissions).Error
	if err != nil {
		return nil, 0, err
	}
	return permissions, total, nil
}

// FindByUUIDs 批量获取未删除的权限码
func (r *permissionRepository) FindByUUIDs(ctx context.Context, uuids []string) ([]model.CustomPermission, error) {
	var permissions []model.CustomPermission
	if len(uuids) == 0 {
		return permissions, nil
	}
	err := r.db.WithContext(ctx).Scopes(notDeleted("custom_permissions")).Where("uuid IN ?", uuids).Find(&permissions).Error
	return permissions, err
}
