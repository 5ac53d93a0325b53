package service

import (
	"context"
	"fmt"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/internal/repository"
)

// CategoryService 文件分类服务接口
type CategoryService interface {
	Create(ctx context.Context, creatorUUID string, req *model.CreateCategoryRequest) (*model.Category, error)
	Get(ctx context.Context, uuid string) (*model.Category, error)
	List(ctx context.Context, page, pageSize int) ([]model.Category, int64, error)
	Delete(ctx context.Context, uuid string) (*model.Category, error)
	CancelDelete(ctx context.Context, uuid string) (*model.Category, error)
}

// categoryService 文件分类服务实现
type categoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService 创建文件分类服务实例
func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

// Create 创建分类，未删除的同名分类直接返回
func (s *categoryService) Create(ctx context.Context, creatorUUID string, req *model.CreateCategoryRequest) (*model.Category, error) {
	existing, err := s.categoryRepo.GetByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.IsDeleted {
			return nil, ErrCategoryExists
		}
		return existing, nil
	}

	category := &model.Category{Name: req.Name, CreatedBy: optional(creatorUUID)}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// Get 获取未删除的分类
func (s *categoryService) Get(ctx context.Context, uuid string) (*model.Category, error) {
	category, err := s.categoryRepo.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if category == nil || category.IsDeleted {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context, page, pageSize int) ([]model.Category, int64, error) {
	return s.categoryRepo.List(ctx, (page-1)*pageSize, pageSize)
}

// Delete 软删除分类
func (s *categoryService) Delete(ctx context.Context, uuid string) (*model.Category, error) {
	category, err := s.categoryRepo.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	if err := softDelete(ctx, category, s.categoryRepo.SaveDeletion); err != nil {
		return nil, fmt.Errorf("failed to delete category: %w", err)
	}
	return category, nil
}

// CancelDelete 撤销删除
func (s *categoryService) CancelDelete(ctx context.Context, uuid string) (*model.Category, error) {
	category, err := s.categoryRepo.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	if err := restoreDeleted(ctx, category, s.categoryRepo.SaveDeletion); err != nil {
		return nil, fmt.Errorf("failed to restore category: %w", err)
	}
	return category, nil
}
