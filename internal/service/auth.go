package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/internal/repository"
	"github.com/Joker-Pro-Max/Pineapple/pkg/logger"
)

// AuthService 认证服务接口
type AuthService interface {
	// Register 注册并直接签发令牌
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	// Login 邮箱或手机号+密码登录
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
	// WechatLogin 小程序登录，用户不存在时自动创建
	WechatLogin(ctx context.Context, req *model.WechatLoginRequest) (*model.AuthResponse, error)
	// Refresh 刷新访问令牌
	Refresh(ctx context.Context, refreshToken string) (*model.AccessTokenResponse, error)
	// Logout 注销访问令牌，refreshToken可为空
	Logout(ctx context.Context, claims *model.TokenClaims, refreshToken string) error
	// MyInfo 当前用户的详细信息
	MyInfo(ctx context.Context, principal *model.Principal) (*model.MyInfoResponse, error)
}

// authService 认证服务实现
type authService struct {
	userRepo   repository.UserRepository
	systemRepo repository.SystemRepository
	resolver   PermissionResolver
	codec      TokenCodec
	denylist   TokenDenylist
	wechat     WechatClient
}

// NewAuthService 创建认证服务实例
func NewAuthService(
	userRepo repository.UserRepository,
	systemRepo repository.SystemRepository,
	resolver PermissionResolver,
	codec TokenCodec,
	denylist TokenDenylist,
	wechat WechatClient,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		systemRepo: systemRepo,
		resolver:   resolver,
		codec:      codec,
		denylist:   denylist,
		wechat:     wechat,
	}
}

// issue 解析调用方并签发令牌
func (s *authService) issue(ctx context.Context, user *model.User) (*model.AuthResponse, error) {
	principal, err := s.resolver.Resolve(ctx, user.UUID)
	if err != nil {
		return nil, err
	}
	pair, err := s.codec.Issue(principal)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{
		User:        model.NewUserBrief(user),
		Roles:       principal.RoleNames(),
		Permissions: principal.EffectivePermissions(),
		Access:      pair.AccessToken,
		Refresh:     pair.RefreshToken,
		ExpiresIn:   int64(pair.AccessTokenExpireIn.Seconds()),
	}, nil
}

// Register 注册
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	phone := strings.TrimSpace(req.Phone)
	if email == "" && phone == "" {
		return nil, ErrAccountRequired
	}

	exists, err := s.userRepo.ExistsByEmailOrPhone(ctx, email, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to check account: %w", err)
	}
	if exists {
		return nil, ErrAccountExists
	}

	user := &model.User{
		Username: req.Username,
		Nickname: req.Nickname,
		Email:    optional(email),
		Phone:    optional(phone),
		IsActive: true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("user registered uuid=%s", user.UUID)
	return s.issue(ctx, user)
}

// Login 登录
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	user, err := s.userRepo.GetByAccount(ctx, strings.TrimSpace(req.Account))
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || !user.CanLogin() || !user.ValidatePassword(req.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, user)
}

// WechatLogin 先按unionid再按openid查找，找不到则创建 wx_<openid前6位> 用户
func (s *authService) WechatLogin(ctx context.Context, req *model.WechatLoginRequest) (*model.AuthResponse, error) {
	session, err := s.wechat.Code2Session(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByWechat(ctx, session.UnionID, session.OpenID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user == nil {
		prefix := session.OpenID
		if len(prefix) > 6 {
			prefix = prefix[:6]
		}
		user = &model.User{
			Username:    "wx_" + prefix,
			WxOpenID:    optional(session.OpenID),
			WxUnionID:   optional(session.UnionID),
			WxNickname:  req.Nickname,
			WxAvatarURL: req.AvatarURL,
			IsActive:    true,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create wechat user: %w", err)
		}
		logger.Info("[WECHAT] user created uuid=%s", user.UUID)
	} else if user.WxUnionID == nil && session.UnionID != "" {
		user.WxUnionID = optional(session.UnionID)
		if err := s.userRepo.Update(ctx, user, "wx_unionid"); err != nil {
			return nil, fmt.Errorf("failed to bind unionid: %w", err)
		}
	}

	if !user.CanLogin() {
		return nil, ErrUnauthenticated
	}
	return s.issue(ctx, user)
}

// Refresh 刷新访问令牌，已注销的刷新令牌或已停用的用户不可用，角色和权限重新解析
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*model.AccessTokenResponse, error) {
	claims, err := s.codec.Parse(refreshToken, model.RefreshToken)
	if err != nil {
		return nil, err
	}
	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResolverFailure, err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	principal, err := s.resolver.Resolve(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	access, expiry, err := s.codec.IssueAccess(principal)
	if err != nil {
		return nil, err
	}
	return &model.AccessTokenResponse{Access: access, ExpiresIn: int64(expiry.Seconds())}, nil
}

// Logout 把令牌的jti写入注销列表，保留到令牌自然过期
func (s *authService) Logout(ctx context.Context, claims *model.TokenClaims, refreshToken string) error {
	if claims == nil {
		return ErrUnauthenticated
	}
	now := time.Now()
	if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresIn(now)); err != nil {
		return err
	}

	if refreshToken == "" {
		return nil
	}
	refresh, err := s.codec.Parse(refreshToken, model.RefreshToken)
	if err != nil {
		// 刷新令牌已失效，无需处理
		return nil
	}
	if refresh.Subject != claims.Subject {
		return ErrInvalidToken
	}
	return s.denylist.Revoke(ctx, refresh.ID, refresh.ExpiresIn(now))
}

// MyInfo 当前用户信息，包含角色、有效权限和可访问的系统
func (s *authService) MyInfo(ctx context.Context, principal *model.Principal) (*model.MyInfoResponse, error) {
	user, err := s.userRepo.GetByUUID(ctx, principal.Subject())
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	roles, err := s.userRepo.GetRoles(ctx, user.UUID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	roleBriefs := make([]model.RoleBrief, 0, len(roles))
	for _, r := range roles {
		brief := model.RoleBrief{UUID: r.UUID, RoleName: r.RoleName, IsEnable: r.IsEnable}
		if r.System != nil {
			brief.SystemCode = r.System.SystemCode
		}
		roleBriefs = append(roleBriefs, brief)
	}

	systems, err := s.systemRepo.ListReachable(ctx, user.UUID)
	if err != nil {
		return nil, fmt.Errorf("failed to load systems: %w", err)
	}
	systemBriefs := make([]model.SystemBrief, 0, len(systems))
	for _, sys := range systems {
		systemBriefs = append(systemBriefs, model.SystemBrief{UUID: sys.UUID, SystemCode: sys.SystemCode, SystemName: sys.SystemName})
	}

	return &model.MyInfoResponse{
		UserBrief:    *model.NewUserBrief(user),
		WxOpenID:     user.WxOpenID,
		WxUnionID:    user.WxUnionID,
		Avatar:       user.Avatar,
		Roles:        roleBriefs,
		Permissions:  principal.EffectivePermissions(),
		Systems:      systemBriefs,
		IsSuperAdmin: principal.IsSuperAdmin(),
	}, nil
}

// optional 空字符串存为NULL，避免唯一索引冲突
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
