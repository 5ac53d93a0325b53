package boot

import (
	"context"
	"fmt"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/internal/repository"
	"github.com/Joker-Pro-Max/Pineapple/pkg/config"
	"github.com/Joker-Pro-Max/Pineapple/pkg/database"
	"github.com/Joker-Pro-Max/Pineapple/pkg/redis"

	"gorm.io/gorm"
)

// InitDB 初始化关系型数据库连接并迁移表结构
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewDB(&cfg.Database, database.ParseLogLevel(cfg.Log.SQLMode))
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate 自动迁移数据库表
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.System{},
		&model.Role{},
		&model.CustomPermission{},
		&model.Category{},
		&model.UserRole{},
		&model.UserSystem{},
		&model.UserPermission{},
		&model.RolePermission{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// InitMongo 初始化 MongoDB 连接
func InitMongo(ctx context.Context, cfg *config.MongoDBConfig) (*database.MongoClient, error) {
	return database.NewMongoClient(ctx, &database.MongoDBConfig{
		URI:         cfg.URI,
		Database:    cfg.Database,
		MaxPoolSize: cfg.MaxPoolSize,
		MinPoolSize: cfg.MinPoolSize,
	})
}

// InitBlobStore 打开GridFS bucket并确保文件元数据索引存在
func InitBlobStore(ctx context.Context, mongodb *database.MongoClient, bucket string, files repository.FileRepository) (repository.BlobStore, error) {
	b, err := mongodb.Bucket(bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to open gridfs bucket: %w", err)
	}
	if err := files.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create file indexes: %w", err)
	}
	return repository.NewGridFSBlobStore(b), nil
}

// InitRedis 初始化 Redis 客户端
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	return redis.NewClient(&redis.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
