package database

import (
	"context"
	"fmt"
	"time"

	applog "github.com/Joker-Pro-Max/Pineapple/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const mongoConnectTimeout = 10 * time.Second

// MongoDBConfig 文件元数据和GridFS所在的MongoDB
type MongoDBConfig struct {
	URI         string
	Database    string
	MaxPoolSize uint64
	MinPoolSize uint64
}

// MongoClient 绑定到单个数据库的客户端
type MongoClient struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewMongoClient 连接并确认主节点可用
func NewMongoClient(ctx context.Context, config *MongoDBConfig) (*MongoClient, error) {
	if config.Database == "" {
		return nil, fmt.Errorf("mongodb database name is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(config.URI).
		SetConnectTimeout(mongoConnectTimeout).
		SetServerSelectionTimeout(mongoConnectTimeout)
	if config.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(config.MaxPoolSize)
	}
	if config.MinPoolSize > 0 {
		opts.SetMinPoolSize(config.MinPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	applog.Info("[MONGO] connected to database %s", config.Database)
	return &MongoClient{client: client, database: client.Database(config.Database)}, nil
}

// Ping 检查连接是否可用
func (c *MongoClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close 断开连接
func (c *MongoClient) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// Collection 获取集合
func (c *MongoClient) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

// Bucket 打开GridFS bucket，name为空时使用默认的fs
func (c *MongoClient) Bucket(name string) (*gridfs.Bucket, error) {
	opts := options.GridFSBucket()
	if name != "" {
		opts.SetName(name)
	}
	return gridfs.NewBucket(c.database, opts)
}
