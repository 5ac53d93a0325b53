package model

// Category 文件分类
type Category struct {
	BaseModel
	Name      string  `gorm:"column:name;type:varchar(100);not null;uniqueIndex" json:"name"`
	CreatedBy *string `gorm:"column:created_by;type:varchar(32);index" json:"created_by"`

	Creator *User `gorm:"foreignKey:CreatedBy;references:UUID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}
