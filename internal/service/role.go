package service

import (
	"context"
	"fmt"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/internal/repository"
)

// RoleService 角色服务接口
type RoleService interface {
	// 基础CRUD
	// actor为操作人，nil表示命令行等内部调用
	Create(ctx context.Context, actor model.Identity, req *model.CreateRoleRequest) (*model.Role, error)
	Get(ctx context.Context, uuid string) (*model.Role, error)
	Update(ctx context.Context, actor model.Identity, uuid string, req *model.UpdateRoleRequest) (*model.Role, error)
	List(ctx context.Context, filter *model.RoleFilter, page, pageSize int) ([]model.Role, int64, error)
	Delete(ctx context.Context, actor model.Identity, uuid string) (*model.Role, error)
	CancelDelete(ctx context.Context, actor model.Identity, uuid string) (*model.Role, error)

	// 角色权限管理
	SetPermissions(ctx context.Context, uuid string, permissionUUIDs []string) error
	GetPermissions(ctx context.Context, uuid string) ([]string, error)
}

// roleService 角色服务实现
type roleService struct {
	roleRepo       repository.RoleRepository
	systemRepo     repository.SystemRepository
	permissionRepo repository.PermissionRepository
}

// NewRoleService 创建角色服务实例
func NewRoleService(
	roleRepo repository.RoleRepository,
	systemRepo repository.SystemRepository,
	permissionRepo repository.PermissionRepository,
) RoleService {
	return &roleService{
		roleRepo:       roleRepo,
		systemRepo:     systemRepo,
		permissionRepo: permissionRepo,
	}
}

// guardSuperAdminRole 非超级管理员不能操作superadmin角色
func guardSuperAdminRole(actor model.Identity, roleNames ...string) error {
	if actor == nil || actor.IsSuperAdmin() {
		return nil
	}
	for _, name := range roleNames {
		if name == model.RoleSuperAdmin {
			return ErrSuperAdminRequired
		}
	}
	return nil
}

// Create 创建角色，同一系统内未删除的同名角色直接返回
func (s *roleService) Create(ctx context.Context, actor model.Identity, req *model.CreateRoleRequest) (*model.Role, error) {
	if err := guardSuperAdminRole(actor, req.RoleName); err != nil {
		return nil, err
	}
	var creatorUUID string
	if actor != nil {
		creatorUUID = actor.Subject()
	}

	system, err := s.systemRepo.GetByCode(ctx, req.SystemCode)
	if err != nil {
		return nil, err
	}
	if system == nil || system.IsDeleted {
		return nil, ErrSystemNotFound
	}

	existing, err := s.roleRepo.GetByName(ctx, system.UUID, req.RoleName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.IsDeleted {
			return nil, ErrRoleNameExists
		}
		return existing, nil
	}

	role := &model.Role{
		RoleName:   req.RoleName,
		IsEnable:   true,
		SystemUUID: system.UUID,
		CreatedBy:  optional(creatorUUID),
	}
	if req.IsEnable != nil {
		role.IsEnable = *req.IsEnable
	}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}
	role.System = system
	return role, nil
}

// Get 获取未删除的角色
func (s *roleService) Get(ctx context.Context, uuid string) (*model.Role, error) {
	role, err := s.roleRepo.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if role == nil || role.IsDeleted {
		return nil, ErrRoleNotFound
	}
	return role, nil
}

// Update 修改角色名称或启用状态
func (s *roleService) Update(ctx context.Context, actor model.Identity, uuid string, req *model.UpdateRoleRequest) (*model.Role, error) {
	role, err := s.Get(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if err := guardSuperAdminRole(actor, role.RoleName); err != nil {
		return nil, err
	}
	if req.RoleName != nil {
		if err := guardSuperAdminRole(actor, *req.RoleName); err != nil {
			return nil, err
		}
	}

	var fields []string
	if req.RoleName != nil && *req.RoleName != role.RoleName {
		other, err := s.roleRepo.GetByName(ctx, role.SystemUUID, *req.RoleName)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, ErrRoleNameExists
		}
		role.RoleName = *req.RoleName
		fields = append(fields, "role_name")
	}
	if req.IsEnable != nil && *req.IsEnable != role.IsEnable {
		role.IsEnable = *req.IsEnable
		fields = append(fields, "is_enable")
	}
	if len(fields) == 0 {
		return role, nil
	}
	if err := s.roleRepo.Update(ctx, role, fields...); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return role, nil
}

// List 角色列表
func (s *roleService) List(ctx context.Context, filter *model.RoleFilter, page, pageSize int) ([]model.Role, int64, error) {
	return s.roleRepo.List(ctx, filter, (page-1)*pageSize, pageSize)
}

// Delete 软删除角色，持有该角色的用户立即失去其权限
func (s *roleService) Delete(ctx context.Context, actor model.Identity, uuid string) (*model.Role, error) {
	role, err := s.roleRepo.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}
	if err := guardSuperAdminRole(actor, role.RoleName); err != nil {
		return nil, err
	}
	if err := softDelete(ctx, role, s.roleRepo.SaveDeletion); err != nil {
		return nil, fmt.Errorf("failed to delete role: %w", err)
	}
	return role, nil
}

// CancelDelete 撤销删除
func (s *roleService) CancelDelete(ctx context.Context, actor model.Identity, uuid string) (*model.Role, error) {
	role, err := s.roleRepo.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}
	if err := guardSuperAdminRole(actor, role.RoleName); err != nil {
		return nil, err
	}
	if err := restoreDeleted(ctx, role, s.roleRepo.SaveDeletion); err != nil {
		return nil, fmt.Errorf("failed to restore role: %w", err)
	}
	return role, nil
}

// SetPermissions 覆盖角色的权限码
func (s *roleService) SetPermissions(ctx context.Context, uuid string, permissionUUIDs []string) error {
	if _, err := s.Get(ctx, uuid); err != nil {
		return err
	}
	ids := uniqueIDs(permissionUUIDs)
	permissions, err := s.permissionRepo.FindByUUIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(permissions) != len(ids) {
		return ErrUnknownReference
	}
	return s.roleRepo.SetPermissions(ctx, uuid, ids)
}

// GetPermissions 角色持有的权限码
func (s *roleService) GetPermissions(ctx context.Context, uuid string) ([]string, error) {
	if _, err := s.Get(ctx, uuid); err != nil {
		return nil, err
	}
	return s.roleRepo.GetPermissionCodes(ctx, uuid)
}
