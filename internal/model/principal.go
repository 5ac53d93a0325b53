package model

// Identity 经过认证的调用方，在一次请求内只读
type Identity interface {
	Subject() string
	UnifiedID() string
	IsSuperAdmin() bool
	IsAdmin() bool
	RoleNames() []string
	EffectivePermissions() []string
}

// Principal 每次请求从身份库重新解析出的调用方快照
type Principal struct {
	userUUID    string
	unifiedUUID string
	superAdmin  bool
	admin       bool
	roles       []string
	permissions []string
}

// NewPrincipal 创建调用方快照，切片会被复制
func NewPrincipal(user *User, roles, permissions []string, superAdmin, admin bool) *Principal {
	return &Principal{
		userUUID:    user.UUID,
		unifiedUUID: user.UnifiedUUID,
		superAdmin:  superAdmin,
		admin:       admin || superAdmin,
		roles:       append([]string(nil), roles...),
		permissions: append([]string(nil), permissions...),
	}
}

func (p *Principal) Subject() string    { return p.userUUID }
func (p *Principal) UnifiedID() string  { return p.unifiedUUID }
func (p *Principal) IsSuperAdmin() bool { return p.superAdmin }
func (p *Principal) IsAdmin() bool      { return p.admin }

// RoleNames 全部角色名（含禁用角色），按名称排序
func (p *Principal) RoleNames() []string {
	return append([]string(nil), p.roles...)
}

// EffectivePermissions 有效权限码，已排序
func (p *Principal) EffectivePermissions() []string {
	return append([]string(nil), p.permissions...)
}

// HasPermission 超级管理员或有效权限集合中包含该权限码
func (p *Principal) HasPermission(code string) bool {
	if p.superAdmin {
		return true
	}
	for _, perm := range p.permissions {
		if perm == code {
			return true
		}
	}
	return false
}
