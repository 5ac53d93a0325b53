package repository

import (
	"context"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"

	"gorm.io/gorm"
)

// GrantRepository 授权查询，只读且不做任何缓存
type GrantRepository interface {
	// RolePermissionCodes 通过启用且未删除的角色获得的权限码
	RolePermissionCodes(ctx context.Context, userUUID string) ([]string, error)
	// DirectPermissionCodes 直接授予用户的未删除权限码
	DirectPermissionCodes(ctx context.Context, userUUID string) ([]string, error)
	// HasEnabledRole 用户是否拥有任一指定名称的启用角色
	HasEnabledRole(ctx context.Context, userUUID string, roleNames ...string) (bool, error)
	// HasPermission 有效权限集合中是否包含该权限码
	HasPermission(ctx context.Context, userUUID, code string) (bool, error)
	// SystemPermissionCodes 限定系统内，用户通过启用角色持有的权限码与codes的交集
	SystemPermissionCodes(ctx context.Context, userUUID, systemCode string, codes []string) ([]string, error)
}

// grantRepository 授权查询实现
type grantRepository struct {
	db *gorm.DB
}

// NewGrantRepository 创建授权查询实例
func NewGrantRepository(db *gorm.DB) GrantRepository {
	return &grantRepository{db: db}
}

// rolePermissionQuery 用户 -> 启用角色 -> 未删除权限
func (r *grantRepository) rolePermissionQuery(ctx context.Context, userUUID string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.CustomPermission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_uuid = custom_permissions.uuid").
		Joins("JOIN roles ON roles.uuid = role_permissions.role_uuid").
		Joins("JOIN user_roles ON user_roles.role_uuid = roles.uuid").
		Where("user_roles.user_uuid = ?", userUUID).
		Where("roles.is_enable = ? AND roles.is_deleted = ?", true, false).
		Where("custom_permissions.is_deleted = ?", false)
}

// directPermissionQuery 用户 -> 直接授予的未删除权限
func (r *grantRepository) directPermissionQuery(ctx context.Context, userUUID string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.CustomPermission{}).
		Joins("JOIN user_permissions ON user_permissions.permission_uuid = custom_permissions.uuid").
		Where("user_permissions.user_uuid = ?", userUUID).
		Where("custom_permissions.is_deleted = ?", false)
}

// RolePermissionCodes 通过启用角色获得的权限码
func (r *grantRepository) RolePermissionCodes(ctx context.Context, userUUID string) ([]string, error) {
	var codes []string
	err := r.rolePermissionQuery(ctx, userUUID).
		Distinct().
		Pluck("custom_permissions.permission_code", &codes).Error
	return codes, err
}

// DirectPermissionCodes 直接授予用户的权限码
func (r *grantRepository) DirectPermissionCodes(ctx context.Context, userUUID string) ([]string, error) {
	var codes []string
	err := r.directPermissionQuery(ctx, userUUID).
		Distinct().
		Pluck("custom_permissions.permission_code", &codes).Error
	return codes, err
}

// HasEnabledRole 是否拥有任一指定名称的启用角色
func (r *grantRepository) HasEnabledRole(ctx context.Context, userUUID string, roleNames ...string) (bool, error) {
	if len(roleNames) == 0 {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Role{}).
		Joins("JOIN user_roles ON user_roles.role_uuid = roles.uuid").
		Where("user_roles.user_uuid = ?", userUUID).
		Where("roles.role_name IN ?", roleNames).
		Where("roles.is_enable = ? AND roles.is_deleted = ?", true, false).
		Count(&count).Error
	return count > 0, err
}

// HasPermission 存在性查询，不加载完整权限集合
func (r *grantRepository) HasPermission(ctx context.Context, userUUID, code string) (bool, error) {
	var count int64
	err := r.rolePermissionQuery(ctx, userUUID).
		Where("custom_permissions.permission_code = ?", code).
		Limit(1).
		Count(&count).Error
	if err != nil || count > 0 {
		return count > 0, err
	}
	err = r.directPermissionQuery(ctx, userUUID).
		Where("custom_permissions.permission_code = ?", code).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

// SystemPermissionCodes 系统范围内的权限码交集，已删除的系统不授予任何权限
func (r *grantRepository) SystemPermissionCodes(ctx context.Context, userUUID, systemCode string, codes []string) ([]string, error) {
	var held []string
	if len(codes) == 0 {
		return held, nil
	}
	err := r.rolePermissionQuery(ctx, userUUID).
		Joins("JOIN systems ON systems.uuid = roles.system_uuid").
		Where("systems.system_code = ? AND systems.is_deleted = ?", systemCode, false).
		Where("custom_permissions.permission_code IN ?", codes).
		Distinct().
		Pluck("custom_permissions.permission_code", &held).Error
	return held, err
}
