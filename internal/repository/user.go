package repository

import (
	"context"
	"errors"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"

	"gorm.io/gorm"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByUUID(ctx context.Context, uuid string) (*model.User, error)
	GetByAccount(ctx context.Context, account string) (*model.User, error)
	GetByWechat(ctx context.Context, unionID, openID string) (*model.User, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	Update(ctx context.Context, user *model.User, fields ...string) error
	List(ctx context.Context, filter *model.UserFilter, offset, limit int) ([]model.User, int64, error)
	Count(ctx context.Context) (int64, error)
	HasSuperuser(ctx context.Context) (bool, error)

	// 用户关联
	SetRoles(ctx context.Context, userUUID string, roleUUIDs []string) error
	SetSystems(ctx context.Context, userUUID string, systemUUIDs []string) error
	SetPermissions(ctx context.Context, userUUID string, permissionUUIDs []string) error
	GetRoles(ctx context.Context, userUUID string) ([]model.Role, error)
}

// userRepository 用户仓储实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储实例
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByUUID 通过uuid获取用户（包含已删除用户，由调用方判断状态）
func (r *userRepository) GetByUUID(ctx context.Context, uuid string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByAccount 通过邮箱或手机号获取用户
func (r *userRepository) GetByAccount(ctx context.Context, account string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Scopes(notDeleted("users")).
		Where("email = ? OR phone = ?", account, account).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByWechat 先按unionid再按openid查找用户
func (r *userRepository) GetByWechat(ctx context.Context, unionID, openID string) (*model.User, error) {
	lookups := []struct {
		column string
		value  string
	}{
		{"wx_unionid", unionID},
		{"wx_openid", openID},
	}
	for _, l := range lookups {
		if l.value == "" {
			continue
		}
		var user model.User
		err := r.db.WithContext(ctx).Where(l.column+" = ?", l.value).First(&user).Error
		if err == nil {
			return &user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

// ExistsByEmailOrPhone 邮箱或手机号是否已被占用
func (r *userRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	if email == "" && phone == "" {
		return false, nil
	}
	query := r.db.WithContext(ctx).Model(&model.User{})
	switch {
	case email != "" && phone != "":
		query = query.Where("email = ? OR phone = ?", email, phone)
	case email != "":
		query = query.Where("email = ?", email)
	default:
		query = query.Where("phone = ?", phone)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update 更新用户的指定字段
func (r *userRepository) Update(ctx context.Context, user *model.User, fields ...string) error {
	query := r.db.WithContext(ctx).Model(user)
	if len(fields) > 0 {
		query = query.Select(fields)
	}
	return query.Updates(user).Error
}

// List 获取用户列表
func (r *userRepository) List(ctx context.Context, filter *model.UserFilter, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := r.db.WithContext(ctx).Model(&model.User{}).Scopes(notDeleted("users"))
	if filter != nil {
		query = icontains(query, "email", filter.Email)
		query = icontains(query, "phone", filter.Phone)
		query = icontains(query, "username", filter.Username)
		query = icontains(query, "nickname", filter.Nickname)
		query = icontains(query, "wx_nickname", filter.WxNickname)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("create_at DESC").Scopes(paginate(offset, limit)).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Count 未删除用户数
func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Scopes(notDeleted("users")).Count(&count).Error
	return count, err
}

// HasSuperuser 是否存在可用的超级用户
func (r *userRepository) HasSuperuser(ctx context.Context) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Scopes(notDeleted("users")).
		Where("is_superuser = ? AND is_active = ?", true, true).
		Count(&count).Error
	return count > 0, err
}

// SetRoles 覆盖用户的角色
func (r *userRepository) SetRoles(ctx context.Context, userUUID string, roleUUIDs []string) error {
	links := make([]model.UserRole, 0, len(roleUUIDs))
	for _, id := range dedupe(roleUUIDs) {
		links = append(links, model.UserRole{UserUUID: userUUID, RoleUUID: id})
	}
	return replaceLinks(ctx, r.db, &model.UserRole{}, "user_uuid", userUUID, links)
}

// SetSystems 覆盖用户可访问的系统
func (r *userRepository) SetSystems(ctx context.Context, userUUID string, systemUUIDs []string) error {
	links := make([]model.UserSystem, 0, len(systemUUIDs))
	for _, id := range dedupe(systemUUIDs) {
		links = append(links, model.UserSystem{UserUUID: userUUID, SystemUUID: id})
	}
	return replaceLinks(ctx, r.db, &model.UserSystem{}, "user_uuid", userUUID, links)
}

// SetPermissions 覆盖直接授予用户的权限
func (r *userRepository) SetPermissions(ctx context.Context, userUUID string, permissionUUIDs []string) error {
	links := make([]model.UserPermission, 0, len(permissionUUIDs))
	for _, id := range dedupe(permissionUUIDs) {
		links = append(links, model.UserPermission{UserUUID: userUUID, PermissionUUID: id})
	}
	return replaceLinks(ctx, r.db, &model.UserPermission{}, "user_uuid", userUUID, links)
}

// GetRoles 获取用户未删除的角色（包含禁用角色），按角色名排序
func (r *userRepository) GetRoles(ctx context.Context, userUUID string) ([]model.Role, error) {
	var roles []model.Role
	err := r.db.WithContext(ctx).
		Preload("System").
		Joins("JOIN user_roles ON user_roles.role_uuid = roles.uuid").
		Where("user_roles.user_uuid = ?", userUUID).
		Scopes(notDeleted("roles")).
		Order("roles.role_name ASC").
		Find(&roles).Error
	return roles, err
}

// replaceLinks 在事务中删除旧关联并写入新关联
func replaceLinks[T any](ctx context.Context, db *gorm.DB, table *T, ownerColumn, ownerUUID string, links []T) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(ownerColumn+" = ?", ownerUUID).Delete(table).Error; err != nil {
			return err
		}
		if len(links) == 0 {
			return nil
		}
		return tx.Create(&links).Error
	})
}

// dedupe 去重并去掉空值，保持原有顺序
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
