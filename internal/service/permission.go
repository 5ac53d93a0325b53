package service

import (
	"context"
	"fmt"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/internal/repository"
)

// PermissionService 权限码服务接口
type PermissionService interface {
	Create(ctx context.Context, creatorUUID string, req *model.CreatePermissionRequest) (*model.CustomPermission, error)
	Get(ctx context.Context, uuid string) (*model.CustomPermission, error)
	Update(ctx context.Context, uuid string, req *model.UpdatePermissionRequest) (*model.CustomPermission, error)
	List(ctx context.Context, filter *model.PermissionFilter, page, pageSize int) ([]model.CustomPermission, int64, error)
	Delete(ctx context.Context, uuid string) (*model.CustomPermission, error)
	CancelDelete(ctx context.Context, uuid string) (*model.CustomPermission, error)
}

// permissionService 权限码服务实现
type permissionService struct {
	permissionRepo repository.PermissionRepository
}

// NewPermissionService 创建权限码服务实例
func NewPermissionService(permissionRepo repository.PermissionRepository) PermissionService {
	return &permissionService{permissionRepo: permissionRepo}
}

// Create 创建权限码，权限码和名称都相同的未删除记录直接返回
func (s *permissionService) Create(ctx context.Context, creatorUUID string, req *model.CreatePermissionRequest) (*model.CustomPermission, error) {
	existing, err := s.permissionRepo.GetByCode(ctx, req.PermissionCode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if !existing.IsDeleted && existing.PermissionName == req.PermissionName {
			return existing, nil
		}
		return nil, ErrPermissionCodeExists
	}

	permission := &model.CustomPermission{
		PermissionCode: req.PermissionCode,
		PermissionName: req.PermissionName,
		CreatedBy:      optional(creatorUUID),
	}
	if err := s.permissionRepo.Create(ctx, permission); err != nil {
		return nil, fmt.Errorf("failed to create permission: %w", err)
	}
	return permission, nil
}

// Get 获取未删除的权限码
func (s *permissionService) Get(ctx context.Context, uuid string) (*model.CustomPermission, error) {
	permission, err := s.permissionRepo.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if permission == nil || permission.IsDeleted {
		return nil, ErrPermissionNotFound
	}
	return permission, nil
}

// Update 修改权限码或名称
func (s *permissionService) Update(ctx context.Context, uuid string, req *model.UpdatePermissionRequest) (*model.CustomPermission, error) {
	permission, err := s.Get(ctx, uuid)
	if err != nil {
		return nil, err
	}

	var fields []string
	if req.PermissionCode != nil && *req.PermissionCode != permission.PermissionCode {
		other, err := s.permissionRepo.GetByCode(ctx, *req.PermissionCode)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, ErrPermissionCodeExists
		}
		permission.PermissionCode = *req.PermissionCode
		fields = append(fields, "permission_code")
	}
	if req.PermissionName != nil {
		permission.PermissionName = *req.PermissionName
		fields = append(fields, "permission_name")
	}
	if len(fields) == 0 {
		return permission, nil
	}
	if err := s.permissionRepo.Update(ctx, permission, fields...); err != nil {
		return nil, fmt.Errorf("failed to update permission: %w", err)
	}
	return permission, nil
}

// List 权限码列表
func (s *permissionService) List(ctx context.Context, filter *model.PermissionFilter, page, pageSize int) ([]model.CustomPermission, int64, error) {
	return s.permissionRepo.List(ctx, filter, (page-1)*pageSize, pageSize)
}

// Delete 软删除，删除后该权限码不再出现在任何人的有效权限中
func (s *permissionService) Delete(ctx context.Context, uuid string) (*model.CustomPermission, error) {
	permission, err := s.permissionRepo.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if permission == nil {
		return nil, ErrPermissionNotFound
	}
	if err := softDelete(ctx, permission, s.permissionRepo.SaveDeletion); err != nil {
		return nil, fmt.Errorf("failed to delete permission: %w", err)
	}
	return permission, nil
}

// CancelDelete 撤销删除
func (s *permissionService) CancelDelete(ctx context.Context, uuid string) (*model.CustomPermission, error) {
	permission, err := s.permissionRepo.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if permission == nil {
		return nil, ErrPermissionNotFound
	}
	if err := restoreDeleted(ctx, permission, s.permissionRepo.SaveDeletion); err != nil {
		return nil, fmt.Errorf("failed to restore permission: %w", err)
	}
	return permission, nil
}
