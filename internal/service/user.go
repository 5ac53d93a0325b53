package service

import (
	"context"
	"fmt"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/internal/repository"
)

// UserService 用户管理服务接口
type UserService interface {
	GetUser(ctx context.Context, uuid string) (*model.User, error)
	ListUsers(ctx context.Context, filter *model.UserFilter, page, pageSize int) ([]model.User, int64, error)
	UpdateUser(ctx context.Context, uuid string, req *model.UpdateUserRequest) (*model.User, error)

	// 用户授权，均为整体覆盖
	SetRoles(ctx context.Context, actor model.Identity, uuid string, roleUUIDs []string) error
	SetSystems(ctx context.Context, uuid string, systemUUIDs []string) error
	SetPermissions(ctx context.Context, uuid string, permissionUUIDs []string) error
}

// userService 用户管理服务实现
type userService struct {
	userRepo       repository.UserRepository
	roleRepo       repository.RoleRepository
	systemRepo     repository.SystemRepository
	permissionRepo repository.PermissionRepository
}

// NewUserService 创建用户管理服务实例
func NewUserService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	systemRepo repository.SystemRepository,
	permissionRepo repository.PermissionRepository,
) UserService {
	return &userService{
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		systemRepo:     systemRepo,
		permissionRepo: permissionRepo,
	}
}

// GetUser 获取未删除的用户
func (s *userService) GetUser(ctx context.Context, uuid string) (*model.User, error) {
	user, err := s.userRepo.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if user == nil || user.IsDeleted {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListUsers 用户列表
func (s *userService) ListUsers(ctx context.Context, filter *model.UserFilter, page, pageSize int) ([]model.User, int64, error) {
	return s.userRepo.List(ctx, filter, (page-1)*pageSize, pageSize)
}

// UpdateUser 修改手机号、头像、用户名、昵称
func (s *userService) UpdateUser(ctx context.Context, uuid string, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.GetUser(ctx, uuid)
	if err != nil {
		return nil, err
	}

	var fields []string
	if req.Phone != nil && (user.Phone == nil || *user.Phone != *req.Phone) {
		if *req.Phone != "" {
			exists, err := s.userRepo.ExistsByEmailOrPhone(ctx, "", *req.Phone)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrAccountExists
			}
		}
		user.Phone = optional(*req.Phone)
		fields = append(fields, "phone")
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
		fields = append(fields, "avatar")
	}
	if req.Username != nil {
		user.Username = *req.Username
		fields = append(fields, "username")
	}
	if req.Nickname != nil {
		user.Nickname = *req.Nickname
		fields = append(fields, "nickname")
	}
	if len(fields) == 0 {
		return user, nil
	}

	if err := s.userRepo.Update(ctx, user, fields...); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// SetRoles 覆盖用户角色，角色必须存在且未删除，授予或收回superadmin需要超级管理员
func (s *userService) SetRoles(ctx context.Context, actor model.Identity, uuid string, roleUUIDs []string) error {
	if _, err := s.GetUser(ctx, uuid); err != nil {
		return err
	}
	ids := uniqueIDs(roleUUIDs)
	roles, err := s.roleRepo.FindByUUIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(roles) != len(ids) {
		return ErrUnknownReference
	}

	current, err := s.userRepo.GetRoles(ctx, uuid)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(roles)+len(current))
	for _, role := range roles {
		names = append(names, role.RoleName)
	}
	for _, role := range current {
		names = append(names, role.RoleName)
	}
	if err := guardSuperAdminRole(actor, names...); err != nil {
		return err
	}
	return s.userRepo.SetRoles(ctx, uuid, ids)
}

// SetSystems 覆盖用户直接关联的系统
func (s *userService) SetSystems(ctx context.Context, uuid string, systemUUIDs []string) error {
	if _, err := s.GetUser(ctx, uuid); err != nil {
		return err
	}
	ids := uniqueIDs(systemUUIDs)
	systems, err := s.systemRepo.FindByUUIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(systems) != len(ids) {
		return ErrUnknownReference
	}
	return s.userRepo.SetSystems(ctx, uuid, ids)
}

// SetPermissions 覆盖直接授予用户的权限码
func (s *userService) SetPermissions(ctx context.Context, uuid string, permissionUUIDs []string) error {
	if _, err := s.GetUser(ctx, uuid); err != nil {
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
	return s.userRepo.SetPermissions(ctx, uuid, ids)
}

// uniqueIDs 去重并去掉空值
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
