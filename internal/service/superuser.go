package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/internal/repository"
	"github.com/Joker-Pro-Max/Pineapple/pkg/logger"

	"github.com/lithammer/shortuuid/v4"
)

// DefaultSuperuserAccount 首次启动自动创建的超级用户邮箱
const DefaultSuperuserAccount = "admin@pineapple.local"

// SuperuserService 超级用户服务接口
type SuperuserService interface {
	// CreateSuperuser 以邮箱或手机号创建超级用户
	CreateSuperuser(ctx context.Context, account, password string) (*model.User, error)
	// EnsureSuperuser 没有可用的超级用户时创建默认账号，返回生成的密码
	EnsureSuperuser(ctx context.Context) (account, password string, created bool, err error)
	// ResetPassword 重置账号密码，password为空时随机生成
	ResetPassword(ctx context.Context, account, password string) (string, error)
}

// superuserService 超级用户服务实现
type superuserService struct {
	userRepo repository.UserRepository
}

// NewSuperuserService 创建超级用户服务实例
func NewSuperuserService(userRepo repository.UserRepository) SuperuserService {
	return &superuserService{userRepo: userRepo}
}

// CreateSuperuser 创建超级用户，包含@的账号视为邮箱
func (s *superuserService) CreateSuperuser(ctx context.Context, account, password string) (*model.User, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, ErrAccountRequired
	}

	var email, phone string
	if strings.Contains(account, "@") {
		email = account
	} else {
		phone = account
	}

	exists, err := s.userRepo.ExistsByEmailOrPhone(ctx, email, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to check account: %w", err)
	}
	if exists {
		return nil, ErrAccountExists
	}

	user := &model.User{
		Username:    account,
		Email:       optional(email),
		Phone:       optional(phone),
		IsActive:    true,
		IsStaff:     true,
		IsSuperuser: true,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create superuser: %w", err)
	}

	logger.Info("superuser created uuid=%s", user.UUID)
	return user, nil
}

// EnsureSuperuser 检查是否需要初始化超级用户
func (s *superuserService) EnsureSuperuser(ctx context.Context) (string, string, bool, error) {
	ok, err := s.userRepo.HasSuperuser(ctx)
	if err != nil {
		return "", "", false, fmt.Errorf("failed to check superuser: %w", err)
	}
	if ok {
		return "", "", false, nil
	}

	password := shortuuid.New()
	if _, err := s.CreateSuperuser(ctx, DefaultSuperuserAccount, password); err != nil {
		return "", "", false, err
	}
	return DefaultSuperuserAccount, password, true, nil
}

// ResetPassword 重置密码，同时重新启用账号
func (s *superuserService) ResetPassword(ctx context.Context, account, password string) (string, error) {
	user, err := s.userRepo.GetByAccount(ctx, strings.TrimSpace(account))
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	if password == "" {
		password = shortuuid.New()
	}
	if err := user.SetPassword(password); err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	user.IsActive = true
	if err := s.userRepo.Update(ctx, user, "password", "is_active"); err != nil {
		return "", fmt.Errorf("failed to update password: %w", err)
	}

	logger.Info("password reset uuid=%s", user.UUID)
	return password, nil
}
