package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileMeta 文件元信息（MongoDB），文件内容按sha256去重后存放在GridFS
type FileMeta struct {
	UUID         string             `bson:"_id" json:"uuid"`
	CategoryUUID string             `bson:"category_uuid" json:"category_uuid"`
	Filename     string             `bson:"filename" json:"filename"`
	ContentType  string             `bson:"content_type" json:"content_type"`
	FileSize     int64              `bson:"file_size" json:"file_size"`
	FileHash     string             `bson:"file_hash" json:"file_hash"`
	BlobID       primitive.ObjectID `bson:"blob_id" json:"-"`
	CreatedBy    *string            `bson:"created_by" json:"created_by"`
	CreateAt     time.Time          `bson:"create_at" json:"create_at"`
	UpdateAt     time.Time          `bson:"update_at" json:"update_at"`
	SoftDelete   `bson:",inline"`
}

// PrimaryKey 主键
func (f *FileMeta) PrimaryKey() string {
	return f.UUID
}

// FileFilter 文件列表过滤条件
type FileFilter struct {
	CategoryUUID   string
	ContentType    string
	CreatedBy      string
	IncludeDeleted bool
}
