package model

// 具有特殊含义的角色名
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
)

// Role 角色实体，角色名在所属系统内唯一
type Role struct {
	BaseModel
	RoleName   string  `gorm:"column:role_name;type:varchar(100);not null;uniqueIndex:idx_role_system_name,priority:2" json:"role_name"`
	IsEnable   bool    `gorm:"column:is_enable;not null;index" json:"is_enable"`
	SystemUUID string  `gorm:"column:system_uuid;type:varchar(32);not null;uniqueIndex:idx_role_system_name,priority:1" json:"system_uuid"`
	CreatedBy  *string `gorm:"column:created_by;type:varchar(32);index" json:"-"`

	System  *System `gorm:"foreignKey:SystemUUID;references:UUID" json:"system,omitempty"`
	Creator *User   `gorm:"foreignKey:CreatedBy;references:UUID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName 指定表名
func (Role) TableName() string {
	return "roles"
}

// RolePermission 角色-权限关联
type RolePermission struct {
	RoleUUID       string `gorm:"column:role_uuid;primaryKey;type:varchar(32)"`
	PermissionUUID string `gorm:"column:permission_uuid;primaryKey;type:varchar(32);index"`
}

// TableName 指定表名
func (RolePermission) TableName() string {
	return "role_permissions"
}
