package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/internal/repository"
)

// PermissionResolver 每次调用都从身份库重新计算，不做缓存
type PermissionResolver interface {
	// Resolve 加载可认证的用户并生成调用方快照
	Resolve(ctx context.Context, userUUID string) (*model.Principal, error)
	// EffectivePermissions 直接权限与启用角色权限的并集，已排序
	EffectivePermissions(ctx context.Context, userUUID string) ([]string, error)
	// AllRoleNames 全部未删除角色名（含禁用角色），按名称排序
	AllRoleNames(ctx context.Context, userUUID string) ([]string, error)
	// IsSuperAdmin is_superuser 或拥有启用的 superadmin 角色
	IsSuperAdmin(ctx context.Context, user *model.User) (bool, error)
	// IsAdmin 超级管理员或拥有启用的 admin 角色
	IsAdmin(ctx context.Context, user *model.User) (bool, error)
	// HasPermission 超级管理员或有效权限中包含该权限码
	HasPermission(ctx context.Context, user *model.User, code string) (bool, error)
	// SystemPermissions 系统范围内用户持有的权限码与codes的交集
	SystemPermissions(ctx context.Context, userUUID, systemCode string, codes []string) ([]string, error)
}

// permissionResolver 权限解析实现
type permissionResolver struct {
	userRepo  repository.UserRepository
	grantRepo repository.GrantRepository
}

// NewPermissionResolver 创建权限解析实例
func NewPermissionResolver(userRepo repository.UserRepository, grantRepo repository.GrantRepository) PermissionResolver {
	return &permissionResolver{
		userRepo:  userRepo,
		grantRepo: grantRepo,
	}
}

func resolverFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrResolverFailure, op, err)
}

// Resolve 加载用户、角色和有效权限
func (r *permissionResolver) Resolve(ctx context.Context, userUUID string) (*model.Principal, error) {
	if userUUID == "" {
		return nil, ErrUnauthenticated
	}
	user, err := r.userRepo.GetByUUID(ctx, userUUID)
	if err != nil {
		return nil, resolverFailure("load user", err)
	}
	if user == nil || !user.CanLogin() {
		return nil, ErrUnauthenticated
	}

	roles, err := r.userRepo.GetRoles(ctx, userUUID)
	if err != nil {
		return nil, resolverFailure("load roles", err)
	}
	names := make([]string, 0, len(roles))
	superAdmin := user.IsSuperuser
	admin := false
	for _, role := range roles {
		names = append(names, role.RoleName)
		if !role.IsEnable {
			continue
		}
		switch role.RoleName {
		case model.RoleSuperAdmin:
			superAdmin = true
		case model.RoleAdmin:
			admin = true
		}
	}
	sort.Strings(names)

	permissions, err := r.EffectivePermissions(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	return model.NewPrincipal(user, names, permissions, superAdmin, admin), nil
}

// EffectivePermissions 直接权限与启用角色权限的并集
func (r *permissionResolver) EffectivePermissions(ctx context.Context, userUUID string) ([]string, error) {
	viaRoles, err := r.grantRepo.RolePermissionCodes(ctx, userUUID)
	if err != nil {
		return nil, resolverFailure("load role permissions", err)
	}
	direct, err := r.grantRepo.DirectPermissionCodes(ctx, userUUID)
	if err != nil {
		return nil, resolverFailure("load direct permissions", err)
	}
	return unionSorted(viaRoles, direct), nil
}

// AllRoleNames 全部角色名
func (r *permissionResolver) AllRoleNames(ctx context.Context, userUUID string) ([]string, error) {
	roles, err := r.userRepo.GetRoles(ctx, userUUID)
	if err != nil {
		return nil, resolverFailure("load roles", err)
	}
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.RoleName)
	}
	sort.Strings(names)
	return names, nil
}

// IsSuperAdmin 超级管理员判定
func (r *permissionResolver) IsSuperAdmin(ctx context.Context, user *model.User) (bool, error) {
	if user.IsSuperuser {
		return true, nil
	}
	ok, err := r.grantRepo.HasEnabledRole(ctx, user.UUID, model.RoleSuperAdmin)
	if err != nil {
		return false, resolverFailure("check super admin", err)
	}
	return ok, nil
}

// IsAdmin 管理员判定
func (r *permissionResolver) IsAdmin(ctx context.Context, user *model.User) (bool, error) {
	if user.IsSuperuser {
		return true, nil
	}
	ok, err := r.grantRepo.HasEnabledRole(ctx, user.UUID, model.RoleSuperAdmin, model.RoleAdmin)
	if err != nil {
		return false, resolverFailure("check admin", err)
	}
	return ok, nil
}

// HasPermission 单个权限码的存在性判定
func (r *permissionResolver) HasPermission(ctx context.Context, user *model.User, code string) (bool, error) {
	superAdmin, err := r.IsSuperAdmin(ctx, user)
	if err != nil || superAdmin {
		return superAdmin, err
	}
	ok, err := r.grantRepo.HasPermission(ctx, user.UUID, code)
	if err != nil {
		return false, resolverFailure("check permission", err)
	}
	return ok, nil
}

// SystemPermissions 系统范围的权限交集
func (r *permissionResolver) SystemPermissions(ctx context.Context, userUUID, systemCode string, codes []string) ([]string, error) {
	held, err := r.grantRepo.SystemPermissionCodes(ctx, userUUID, systemCode, codes)
	if err != nil {
		return nil, resolverFailure("load system permissions", err)
	}
	return held, nil
}

// unionSorted 合并去重并排序
func unionSorted(sets ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, set := range sets {
		for _, code := range set {
			if _, ok := seen[code]; ok {
				continue
			}
			seen[code] = struct{}{}
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}
