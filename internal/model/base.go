package model

import (
	"time"

	"github.com/lithammer/shortuuid/v4"
	"gorm.io/gorm"
)

// SoftDelete 软删除状态
type SoftDelete struct {
	IsDeleted bool       `gorm:"column:is_deleted;not null;default:false;index" json:"is_deleted" bson:"is_deleted"`
	DeletedAt *time.Time `gorm:"column:deleted_at" json:"deleted_at" bson:"deleted_at"`
}

// SoftDeleteState 返回可修改的软删除状态
func (s *SoftDelete) SoftDeleteState() *SoftDelete {
	return s
}

// Deleted 是否已软删除
func (s *SoftDelete) Deleted() bool {
	return s.IsDeleted
}

// SoftDeletable 支持软删除的实体
type SoftDeletable interface {
	SoftDeleteState() *SoftDelete
}

// Entity 带主键的软删除实体
type Entity interface {
	SoftDeletable
	PrimaryKey() string
}

// MarkDeleted 标记为已删除，重复删除时以最后一次的时间为准
func MarkDeleted(e SoftDeletable, now time.Time) {
	state := e.SoftDeleteState()
	deletedAt := now
	state.IsDeleted = true
	state.DeletedAt = &deletedAt
}

// Restore 撤销删除
func Restore(e SoftDeletable) {
	state := e.SoftDeleteState()
	state.IsDeleted = false
	state.DeletedAt = nil
}

// NewShortID 生成22位短UUID
func NewShortID() string {
	return shortuuid.New()
}

// BaseModel 所有实体共用的字段
type BaseModel struct {
	UUID        string    `gorm:"column:uuid;primaryKey;type:varchar(32)" json:"uuid"`
	UnifiedUUID string    `gorm:"column:unified_uuid;type:varchar(32);not null;uniqueIndex" json:"unified_uuid"`
	CreateAt    time.Time `gorm:"column:create_at;autoCreateTime;index" json:"create_at"`
	UpdateAt    time.Time `gorm:"column:update_at;autoUpdateTime" json:"update_at"`
	SoftDelete
}

// PrimaryKey 主键
func (b *BaseModel) PrimaryKey() string {
	return b.UUID
}

// BeforeCreate GORM的钩子，在创建记录前生成短UUID
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.UUID == "" {
		b.UUID = NewShortID()
	}
	if b.UnifiedUUID == "" {
		b.UnifiedUUID = NewShortID()
	}
	return nil
}
