package service

import (
	"context"
	"fmt"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/internal/repository"
)

// SystemService 系统服务接口
type SystemService interface {
	// Create 相同系统码和名称的未删除系统已存在时直接返回
	Create(ctx context.Context, creatorUUID string, req *model.CreateSystemRequest) (*model.System, error)
	Get(ctx context.Context, uuid string) (*model.System, error)
	Update(ctx context.Context, uuid string, req *model.UpdateSystemRequest) (*model.System, error)
	List(ctx context.Context, filter *model.SystemFilter, page, pageSize int) ([]model.System, int64, error)
	Delete(ctx context.Context, uuid string) (*model.System, error)
	CancelDelete(ctx context.Context, uuid string) (*model.System, error)
}

// systemService 系统服务实现
type systemService struct {
	systemRepo repository.SystemRepository
}

// NewSystemService 创建系统服务实例
func NewSystemService(systemRepo repository.SystemRepository) SystemService {
	return &systemService{systemRepo: systemRepo}
}

// Create 创建系统
func (s *systemService) Create(ctx context.Context, creatorUUID string, req *model.CreateSystemRequest) (*model.System, error) {
	existing, err := s.systemRepo.GetByCode(ctx, req.SystemCode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if !existing.IsDeleted && existing.SystemName == req.SystemName {
			return existing, nil
		}
		return nil, ErrSystemCodeExists
	}

	system := &model.System{
		SystemCode: req.SystemCode,
		SystemName: req.SystemName,
		CreatedBy:  optional(creatorUUID),
	}
	if err := s.systemRepo.Create(ctx, system); err != nil {
		return nil, fmt.Errorf("failed to create system: %w", err)
	}
	return system, nil
}

// Get 获取未删除的系统
func (s *systemService) Get(ctx context.Context, uuid string) (*model.System, error) {
	system, err := s.systemRepo.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if system == nil || system.IsDeleted {
		return nil, ErrSystemNotFound
	}
	return system, nil
}

// Update 修改系统码或名称
func (s *systemService) Update(ctx context.Context, uuid string, req *model.UpdateSystemRequest) (*model.System, error) {
	system, err := s.Get(ctx, uuid)
	if err != nil {
		return nil, err
	}

	var fields []string
	if req.SystemCode != nil && *req.SystemCode != system.SystemCode {
		other, err := s.systemRepo.GetByCode(ctx, *req.SystemCode)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, ErrSystemCodeExists
		}
		system.SystemCode = *req.SystemCode
		fields = append(fields, "system_code")
	}
	if req.SystemName != nil {
		system.SystemName = *req.SystemName
		fields = append(fields, "system_name")
	}
	if len(fields) == 0 {
		return system, nil
	}
	if err := s.systemRepo.Update(ctx, system, fields...); err != nil {
		return nil, fmt.Errorf("failed to update system: %w", err)
	}
	return system, nil
}

// List 系统列表
func (s *systemService) List(ctx context.Context, filter *model.SystemFilter, page, pageSize int) ([]model.System, int64, error) {
	return s.systemRepo.List(ctx, filter, (page-1)*pageSize, pageSize)
}

// Delete 软删除，删除后该系统下的角色不再授予任何权限
func (s *systemService) Delete(ctx context.Context, uuid string) (*model.System, error) {
	system, err := s.systemRepo.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if system == nil {
		return nil, ErrSystemNotFound
	}
	if err := softDelete(ctx, system, s.systemRepo.SaveDeletion); err != nil {
		return nil, fmt.Errorf("failed to delete system: %w", err)
	}
	return system, nil
}

// CancelDelete 撤销删除
func (s *systemService) CancelDelete(ctx context.Context, uuid string) (*model.System, error) {
	system, err := s.systemRepo.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if system == nil {
		return nil, ErrSystemNotFound
	}
	if err := restoreDeleted(ctx, system, s.systemRepo.SaveDeletion); err != nil {
		return nil, fmt.Errorf("failed to restore system: %w", err)
	}
	return system, nil
}
