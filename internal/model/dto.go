package model

import "time"

// RegisterRequest 注册请求，邮箱和手机号至少填写一个
type RegisterRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest 登录请求，account可以是邮箱或手机号
type LoginRequest struct {
	Account  string `json:"account" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// WechatLoginRequest 小程序登录请求
type WechatLoginRequest struct {
	Code      string `json:"code" binding:"required"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
}

// UserBrief 用户简要信息
type UserBrief struct {
	UUID        string  `json:"uuid"`
	UnifiedUUID string  `json:"unified_uuid"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Username    string  `json:"username"`
	Nickname    string  `json:"nickname"`
	WxNickname  string  `json:"wx_nickname"`
	WxAvatarURL string  `json:"wx_avatar_url"`
}

// NewUserBrief 从用户实体构造简要信息
func NewUserBrief(u *User) *UserBrief {
	if u == nil {
		return nil
	}
	return &UserBrief{
		UUID:        u.UUID,
		UnifiedUUID: u.UnifiedUUID,
		Email:       u.Email,
		Phone:       u.Phone,
		Username:    u.Username,
		Nickname:    u.Nickname,
		WxNickname:  u.WxNickname,
		WxAvatarURL: u.WxAvatarURL,
	}
}

// CreatorInfo 创建人信息
type CreatorInfo struct {
	UUID        string `json:"uuid"`
	UnifiedUUID string `json:"unified_uuid"`
	Nickname    string `json:"nickname"`
	WxNickname  string `json:"wx_nickname"`
}

// NewCreatorInfo 构造创建人信息，创建人已不存在时返回nil
func NewCreatorInfo(u *User) *CreatorInfo {
	if u == nil {
		return nil
	}
	return &CreatorInfo{UUID: u.UUID, UnifiedUUID: u.UnifiedUUID, Nickname: u.Nickname, WxNickname: u.WxNickname}
}

// AuthResponse 登录/注册响应
type AuthResponse struct {
	User        *UserBrief `json:"user"`
	Roles       []string   `json:"roles"`
	Permissions []string   `json:"permissions"`
	Access      string     `json:"access"`
	Refresh     string     `json:"refresh"`
	ExpiresIn   int64      `json:"expires_in"`
}

// RoleBrief 角色简要信息
type RoleBrief struct {
	UUID       string `json:"uuid"`
	RoleName   string `json:"role_name"`
	IsEnable   bool   `json:"is_enable"`
	SystemCode string `json:"system_code"`
}

// SystemBrief 系统简要信息
type SystemBrief struct {
	UUID       string `json:"uuid"`
	SystemCode string `json:"system_code"`
	SystemName string `json:"system_name"`
}

// MyInfoResponse 当前用户信息
type MyInfoResponse struct {
	UserBrief
	WxOpenID     *string       `json:"wx_openid"`
	WxUnionID    *string       `json:"wx_unionid"`
	Avatar       string        `json:"avatar"`
	Roles        []RoleBrief   `json:"roles"`
	Permissions  []string      `json:"permissions"`
	Systems      []SystemBrief `json:"systems"`
	IsSuperAdmin bool          `json:"is_super_admin"`
}

// UpdateUserRequest 修改用户资料
type UpdateUserRequest struct {
	Phone    *string `json:"phone"`
	Avatar   *string `json:"avatar"`
	Username *string `json:"username"`
	Nickname *string `json:"nickname"`
}

// AssignRequest 批量设置关联（角色、系统或权限）
type AssignRequest struct {
	UUIDs []string `json:"uuids"`
}

// UserFilter 用户列表过滤条件（模糊匹配）
type UserFilter struct {
	Email      string `form:"email"`
	Phone      string `form:"phone"`
	Username   string `form:"username"`
	Nickname   string `form:"nickname"`
	WxNickname string `form:"wx_nickname"`
}

// CreateSystemRequest 创建系统
type CreateSystemRequest struct {
	SystemCode string `json:"system_code" binding:"required,max=100"`
	SystemName string `json:"system_name" binding:"required,max=100"`
}

// UpdateSystemRequest 修改系统
type UpdateSystemRequest struct {
	SystemCode *string `json:"system_code"`
	SystemName *string `json:"system_name"`
}

// SystemFilter 系统列表过滤条件
type SystemFilter struct {
	SystemName string `form:"system_name"`
	SystemCode string `form:"system_code"`
	CreatedBy  string `form:"created_by"`
}

// SystemResponse 系统详情
type SystemResponse struct {
	UUID        string       `json:"uuid"`
	SystemCode  string       `json:"system_code"`
	SystemName  string       `json:"system_name"`
	CreatedInfo *CreatorInfo `json:"created_info"`
	CreateAt    time.Time    `json:"create_at"`
	UpdateAt    time.Time    `json:"update_at"`
}

// NewSystemResponse 构造系统详情
func NewSystemResponse(s *System) *SystemResponse {
	return &SystemResponse{
		UUID:        s.UUID,
		SystemCode:  s.SystemCode,
		SystemName:  s.SystemName,
		CreatedInfo: NewCreatorInfo(s.Creator),
		CreateAt:    s.CreateAt,
		UpdateAt:    s.UpdateAt,
	}
}

// CreateRoleRequest 创建角色，角色必须属于某个系统
type CreateRoleRequest struct {
	RoleName   string `json:"role_name" binding:"required,max=100"`
	SystemCode string `json:"system_code" binding:"required"`
	IsEnable   *bool  `json:"is_enable"`
}

// UpdateRoleRequest 修改角色
type UpdateRoleRequest struct {
	RoleName *string `json:"role_name"`
	IsEnable *bool   `json:"is_enable"`
}

// RoleFilter 角色列表过滤条件
type RoleFilter struct {
	RoleName   string `form:"role_name"`
	IsEnable   *bool  `form:"is_enable"`
	CreatedBy  string `form:"created_by"`
	SystemCode string `form:"system_code"`
}

// RoleResponse 角色详情
type RoleResponse struct {
	UUID        string       `json:"uuid"`
	RoleName    string       `json:"role_name"`
	IsEnable    bool         `json:"is_enable"`
	SystemCode  string       `json:"system_code"`
	Permissions []string     `json:"permissions,omitempty"`
	CreatedInfo *CreatorInfo `json:"created_info"`
	CreateAt    time.Time    `json:"create_at"`
	UpdateAt    time.Time    `json:"update_at"`
}

// NewRoleResponse 构造角色详情
func NewRoleResponse(r *Role, permissions []string) *RoleResponse {
	resp := &RoleResponse{
		UUID:        r.UUID,
		RoleName:    r.RoleName,
		IsEnable:    r.IsEnable,
		Permissions: permissions,
		CreatedInfo: NewCreatorInfo(r.Creator),
		CreateAt:    r.CreateAt,
		UpdateAt:    r.UpdateAt,
	}
	if r.System != nil {
		resp.SystemCode = r.System.SystemCode
	}
	return resp
}

// CreatePermissionRequest 创建权限码
type CreatePermissionRequest struct {
	PermissionCode string `json:"permission_code" binding:"required,max=100"`
	PermissionName string `json:"permission_name" binding:"required,max=100"`
}

// UpdatePermissionRequest 修改权限码
type UpdatePermissionRequest struct {
	PermissionCode *string `json:"permission_code"`
	PermissionName *string `json:"permission_name"`
}

// PermissionFilter 权限列表过滤条件
type PermissionFilter struct {
	PermissionName string `form:"permission_name"`
	PermissionCode string `form:"permission_code"`
	CreatedBy      string `form:"created_by"`
}

// PermissionResponse 权限详情
type PermissionResponse struct {
	UUID           string       `json:"uuid"`
	PermissionCode string       `json:"permission_code"`
	PermissionName string       `json:"permission_name"`
	CreatedInfo    *CreatorInfo `json:"created_info"`
}

// NewPermissionResponse 构造权限详情
func NewPermissionResponse(p *CustomPermission) *PermissionResponse {
	return &PermissionResponse{
		UUID:           p.UUID,
		PermissionCode: p.PermissionCode,
		PermissionName: p.PermissionName,
		CreatedInfo:    NewCreatorInfo(p.Creator),
	}
}

// CreateCategoryRequest 创建分类
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// DeletedResponse 软删除/撤销删除结果
type DeletedResponse struct {
	UUID      string     `json:"uuid"`
	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at"`
}

// NewDeletedResponse 构造软删除结果
func NewDeletedResponse(e Entity) *DeletedResponse {
	state := e.SoftDeleteState()
	return &DeletedResponse{UUID: e.PrimaryKey(), IsDeleted: state.IsDeleted, DeletedAt: state.DeletedAt}
}
