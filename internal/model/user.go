package model

import (
	"golang.org/x/crypto/bcrypt"
)

// User 用户模型
type User struct {
	BaseModel
	Username    string  `gorm:"column:username;type:varchar(150)" json:"username"`
	Nickname    string  `gorm:"column:nickname;type:varchar(100)" json:"nickname"`
	Avatar      string  `gorm:"column:avatar;type:varchar(500)" json:"avatar"`
	Email       *string `gorm:"column:email;type:varchar(254);uniqueIndex" json:"email"`
	Phone       *string `gorm:"column:phone;type:varchar(20);uniqueIndex" json:"phone"`
	Password    string  `gorm:"column:password;type:varchar(128)" json:"-"`
	WxOpenID    *string `gorm:"column:wx_openid;type:varchar(64);uniqueIndex" json:"wx_openid"`
	WxUnionID   *string `gorm:"column:wx_unionid;type:varchar(64);uniqueIndex" json:"wx_unionid"`
	WxNickname  string  `gorm:"column:wx_nickname;type:varchar(100)" json:"wx_nickname"`
	WxAvatarURL string  `gorm:"column:wx_avatar_url;type:varchar(500)" json:"wx_avatar_url"`
	IsActive    bool    `gorm:"column:is_active;not null" json:"is_active"`
	IsStaff     bool    `gorm:"column:is_staff;not null" json:"is_staff"`
	IsSuperuser bool    `gorm:"column:is_superuser;not null" json:"is_superuser"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// SetPassword 设置密码（bcrypt单向哈希）
func (u *User) SetPassword(raw string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// ValidatePassword 验证密码
func (u *User) ValidatePassword(raw string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(raw)) == nil
}

// CanLogin 账号可用于认证
func (u *User) CanLogin() bool {
	return u.IsActive && !u.IsDeleted
}

// UserRole 用户-角色关联
type UserRole struct {
	UserUUID string `gorm:"column:user_uuid;primaryKey;type:varchar(32)"`
	RoleUUID string `gorm:"column:role_uuid;primaryKey;type:varchar(32);index"`
}

// TableName 指定表名
func (UserRole) TableName() string {
	return "user_roles"
}

// UserSystem 用户-系统关联
type UserSystem struct {
	UserUUID   string `gorm:"column:user_uuid;primaryKey;type:varchar(32)"`
	SystemUUID string `gorm:"column:system_uuid;primaryKey;type:varchar(32);index"`
}

// TableName 指定表名
func (UserSystem) TableName() string {
	return "user_systems"
}

// UserPermission 直接授予用户的平台内置权限
type UserPermission struct {
	UserUUID       string `gorm:"column:user_uuid;primaryKey;type:varchar(32)"`
	PermissionUUID string `gorm:"column:permission_uuid;primaryKey;type:varchar(32);index"`
}

// TableName 指定表名
func (UserPermission) TableName() string {
	return "user_permissions"
}
