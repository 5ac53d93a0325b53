package service

import "errors"

// 认证与授权
var (
	// ErrInvalidToken 签名错误、类型不符或格式错误
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired 令牌已过期
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenRevoked 令牌已注销
	ErrTokenRevoked = errors.New("token revoked")
	// ErrUnauthenticated 未携带凭证或用户不存在/不可用
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden 权限不足
	ErrForbidden = errors.New("forbidden")
	// ErrSuperAdminRequired superadmin角色只能由超级管理员创建、修改或授予
	ErrSuperAdminRequired = errors.New("super admin required")
	// ErrResolverFailure 身份库不可用
	ErrResolverFailure = errors.New("permission resolver failure")
	// ErrInvalidCredentials 账号或密码错误
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountExists 邮箱或手机号已注册
	ErrAccountExists = errors.New("account already exists")
	// ErrAccountRequired 邮箱和手机号至少填写一个
	ErrAccountRequired = errors.New("email or phone is required")
	// ErrWechatLogin 微信登录失败
	ErrWechatLogin = errors.New("wechat login failed")
)

// 身份库
var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrSystemNotFound 系统不存在
	ErrSystemNotFound = errors.New("system not found")
	// ErrSystemCodeExists 系统码已存在
	ErrSystemCodeExists = errors.New("system code already exists")
	// ErrRoleNotFound 角色不存在
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleNameExists 系统内角色名已存在
	ErrRoleNameExists = errors.New("role name already exists in system")
	// ErrPermissionNotFound 权限码不存在
	ErrPermissionNotFound = errors.New("permission not found")
	// ErrPermissionCodeExists 权限码已存在
	ErrPermissionCodeExists = errors.New("permission code already exists")
	// ErrUnknownReference 关联的记录不存在或已删除
	ErrUnknownReference = errors.New("referenced record not found")
)

// 文件
var (
	// ErrFileNotFound 文件不存在
	ErrFileNotFound = errors.New("file not found")
	// ErrFileTooLarge 文件太大
	ErrFileTooLarge = errors.New("file too large")
	// ErrCategoryNotFound 分类不存在
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryExists 分类已存在
	ErrCategoryExists = errors.New("category already exists")
)
