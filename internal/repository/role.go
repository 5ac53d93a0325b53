package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"

	"gorm.io/gorm"
)

// RoleRepository 角色仓储接口
type RoleRepository interface {
	// 基础CRUD
	Create(ctx context.Context, role *model.Role) error
	GetByUUID(ctx context.Context, uuid string) (*model.Role, error)
	Update(ctx context.Context, role *model.Role, fields ...string) error
	SaveDeletion(ctx context.Context, role *model.Role, now time.Time) error

	// 查询方法
	GetByName(ctx context.Context, systemUUID, name string) (*model.Role, error)
	List(ctx context.Context, filter *model.RoleFilter, offset, limit int) ([]model.Role, int64, error)
	FindByUUIDs(ctx context.Context, uuids []string) ([]model.Role, error)

	// 角色-权限关联
	SetPermissions(ctx context.Context, roleUUID string, permissionUUIDs []string) error
	GetPermissionCodes(ctx context.Context, roleUUID string) ([]string, error)
}

// roleRepository 角色仓储实现
type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository 创建角色仓储实例
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

// Create 创建角色
func (r *roleRepository) Create(ctx context.Context, role *model.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

// GetByUUID 通过uuid获取角色（包含已删除角色）
func (r *roleRepository) GetByUUID(ctx context.Context, uuid string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Preload("System").Preload("Creator").Where("uuid = ?", uuid).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

// GetByName 在系统内按名称获取角色（包含已删除角色）
func (r *roleRepository) GetByName(ctx context.Context, systemUUID, name string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Preload("System").Where("system_uuid = ? AND role_name = ?", systemUUID, name).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

// Update 更新角色的指定字段
func (r *roleRepository) Update(ctx context.Context, role *model.Role, fields ...string) error {
	query := r.db.WithContext(ctx).Model(role).Omit("System", "Creator")
	if len(fields) > 0 {
		query = query.Select(fields)
	}
	return query.Updates(role).Error
}

// SaveDeletion 持久化软删除状态
func (r *roleRepository) SaveDeletion(ctx context.Context, role *model.Role, now time.Time) error {
	return saveDeletionState(ctx, r.db, role, now)
}

// List 获取角色列表
func (r *roleRepository) List(ctx context.Context, filter *model.RoleFilter, offset, limit int) ([]model.Role, int64, error) {
	var roles []model.Role
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Role{}).Scopes(notDeleted("roles"))
	if filter != nil {
		query = icontains(query, "roles.role_name", filter.RoleName)
		if filter.IsEnable != nil {
			query = query.Where("roles.is_enable = ?", *filter.IsEnable)
		}
		query = createdByUnified(query, "roles", filter.CreatedBy)
		if filter.SystemCode != "" {
			query = query.Joins("JOIN systems ON systems.uuid = roles.system_uuid").
				Where("systems.system_code = ?", filter.SystemCode)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("System").Preload("Creator").
		Order("roles.create_at DESC").
		Scopes(paginate(offset, limit)).
		Find(&roles).Error
	if err != nil {
		return nil, 0, err
	}
	return roles, total, nil
}

// FindByUUIDs 批量获取未删除的角色
func (r *roleRepository) FindByUUIDs(ctx context.Context, uuids []string) ([]model.Role, error) {
	var roles []model.Role
	if len(uuids) == 0 {
		return roles, nil
	}
	err := r.db.WithContext(ctx).Scopes(notDeleted("roles")).Where("uuid IN ?", uuids).Find(&roles).Error
	return roles, err
}

// SetPermissions 覆盖角色的权限
func (r *roleRepository) SetPermissions(ctx context.Context, roleUUID string, permissionUUIDs []string) error {
	links := make([]model.RolePermission, 0, len(permissionUUIDs))
	for _, id := range dedupe(permissionUUIDs) {
		links = append(links, model.RolePermission{RoleUUID: roleUUID, PermissionUUID: id})
	}
	return replaceLinks(ctx, r.db, &model.RolePermission{}, "role_uuid", roleUUID, links)
}

// GetPermissionCodes 获取角色关联的未删除权限码
func (r *roleRepository) GetPermissionCodes(ctx context.Context, roleUUID string) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Model(&model.CustomPermission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_uuid = custom_permissions.uuid").
		Where("role_permissions.role_uuid = ?", roleUUID).
		Scopes(notDeleted("custom_permissions")).
		Order("custom_permissions.permission_code ASC").
		Pluck("custom_permissions.permission_code", &codes).Error
	return codes, err
}
