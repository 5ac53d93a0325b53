package repository

import (
	"context"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	fileCollection = "file_meta"
)

// FileRepository 文件元信息仓储接口
type FileRepository interface {
	// Create 创建文件记录，哈希冲突时返回mongo.IsDuplicateKeyError可识别的错误
	Create(ctx context.Context, file *model.FileMeta) error
	// GetByUUID 通过uuid获取文件记录（包含已删除）
	GetByUUID(ctx context.Context, uuid string) (*model.FileMeta, error)
	// GetByHash 通过sha256获取文件记录（包含已删除）
	GetByHash(ctx context.Context, hash string) (*model.FileMeta, error)
	// SaveDeletion 只写入软删除相关字段
	SaveDeletion(ctx context.Context, file *model.FileMeta, now time.Time) error
	// List 获取文件列表
	List(ctx context.Context, filter *model.FileFilter, offset, limit int64) ([]*model.FileMeta, int64, error)
	// EnsureIndexes 创建唯一索引
	EnsureIndexes(ctx context.Context) error
}

// fileRepository 文件元信息仓储实现
type fileRepository struct {
	collection *mongo.Collection
}

// NewFileRepository 创建文件元信息仓储实例
func NewFileRepository(client *database.MongoClient) FileRepository {
	return &fileRepository{collection: client.Collection(fileCollection)}
}

// EnsureIndexes 创建唯一索引
func (r *fileRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "file_hash", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category_uuid", Value: 1}, {Key: "create_at", Value: -1}}},
	})
	return err
}

// Create 创建文件记录
func (r *fileRepository) Create(ctx context.Context, file *model.FileMeta) error {
	now := time.Now()
	if file.UUID == "" {
		file.UUID = model.NewShortID()
	}
	file.CreateAt = now
	file.UpdateAt = now

	_, err := r.collection.InsertOne(ctx, file)
	return err
}

// GetByUUID 通过uuid获取文件记录
func (r *fileRepository) GetByUUID(ctx context.Context, uuid string) (*model.FileMeta, error) {
	return r.findOne(ctx, bson.M{"_id": uuid})
}

// GetByHash 通过sha256获取文件记录
func (r *fileRepository) GetByHash(ctx context.Context, hash string) (*model.FileMeta, error) {
	return r.findOne(ctx, bson.M{"file_hash": hash})
}

func (r *fileRepository) findOne(ctx context.Context, filter bson.M) (*model.FileMeta, error) {
	var file model.FileMeta
	err := r.collection.FindOne(ctx, filter).Decode(&file)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// SaveDeletion 只写入软删除相关字段
func (r *fileRepository) SaveDeletion(ctx context.Context, file *model.FileMeta, now time.Time) error {
	state := file.SoftDeleteState()
	file.UpdateAt = now
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": file.UUID},
		bson.M{"$set": bson.M{
			"is_deleted": state.IsDeleted,
			"deleted_at": state.DeletedAt,
			"update_at":  now,
		}},
	)
	return err
}

// List 获取文件列表，按上传时间倒序
func (r *fileRepository) List(ctx context.Context, filter *model.FileFilter, offset, limit int64) ([]*model.FileMeta, int64, error) {
	query := bson.M{}
	if filter == nil || !filter.IncludeDeleted {
		query["is_deleted"] = false
	}
	if filter != nil {
		if filter.CategoryUUID != "" {
			query["category_uuid"] = filter.CategoryUUID
		}
		if filter.ContentType != "" {
			query["content_type"] = filter.ContentType
		}
		if filter.CreatedBy != "" {
			query["created_by"] = filter.CreatedBy
		}
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSkip(offset).
		SetLimit(limit).
		SetSort(bson.D{{Key: "create_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	files := make([]*model.FileMeta, 0)
	if err := cursor.All(ctx, &files); err != nil {
		return nil, 0, err
	}
	return files, total, nil
}
