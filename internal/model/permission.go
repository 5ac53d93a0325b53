package model

// CustomPermission 权限码实体，权限码全局唯一
type CustomPermission struct {
	BaseModel
	PermissionCode string  `gorm:"column:permission_code;type:varchar(100);not null;uniqueIndex" json:"permission_code"`
	PermissionName string  `gorm:"column:permission_name;type:varchar(100);not null" json:"permission_name"`
	CreatedBy      *string `gorm:"column:created_by;type:varchar(32);index" json:"-"`

	Creator *User `gorm:"foreignKey:CreatedBy;references:UUID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName 指定表名
func (CustomPermission) TableName() string {
	return "custom_permissions"
}
