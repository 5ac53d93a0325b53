package model

// System 接入的业务系统，系统码全局唯一
type System struct {
	BaseModel
	SystemCode string  `gorm:"column:system_code;type:varchar(100);not null;uniqueIndex" json:"system_code"`
	SystemName string  `gorm:"column:system_name;type:varchar(100);not null" json:"system_name"`
	CreatedBy  *string `gorm:"column:created_by;type:varchar(32);index" json:"-"`

	Creator *User `gorm:"foreignKey:CreatedBy;references:UUID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName 指定表名
func (System) TableName() string {
	return "systems"
}
