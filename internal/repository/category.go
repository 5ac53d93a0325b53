package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"

	"gorm.io/gorm"
)

// CategoryRepository 文件分类仓储接口
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	GetByUUID(ctx context.Context, uuid string) (*model.Category, error)
	GetByName(ctx context.Context, name string) (*model.Category, error)
	SaveDeletion(ctx context.Context, category *model.Category, now time.Time) error
	List(ctx context.Context, offset, limit int) ([]model.Category, int64, error)
}

// categoryRepository 文件分类仓储实现
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建文件分类仓储实例
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create 创建分类
func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// GetByUUID 通过uuid获取分类（包含已删除）
func (r *categoryRepository) GetByUUID(ctx context.Context, uuid string) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// GetByName 通过名称获取分类（包含已删除）
func (r *categoryRepository) GetByName(ctx context.Context, name string) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// SaveDeletion 持久化软删除状态
func (r *categoryRepository) SaveDeletion(ctx context.Context, category *model.Category, now time.Time) error {
	return saveDeletionState(ctx, r.db, category, now)
}

// List 获取分类列表
func (r *categoryRepository) List(ctx context.Context, offset, limit int) ([]model.Category, int64, error) {
	var categories []model.Category
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Category{}).Scopes(notDeleted("categories"))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("name ASC").Scopes(paginate(offset, limit)).Find(&categories).Error; err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}
