package repository

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BlobStore 文件内容存储
type BlobStore interface {
	// Put 写入内容，返回blob id
	Put(ctx context.Context, filename, contentType string, r io.Reader) (primitive.ObjectID, error)
	// Open 打开内容用于下载，调用方负责关闭
	Open(ctx context.Context, id primitive.ObjectID) (io.ReadCloser, error)
	// Remove 删除内容
	Remove(ctx context.Context, id primitive.ObjectID) error
}

// ErrBlobNotFound 文件内容不存在
var ErrBlobNotFound = errors.New("blob not found")

// gridFSBlobStore GridFS实现
type gridFSBlobStore struct {
	bucket *gridfs.Bucket
}

// NewGridFSBlobStore 创建GridFS存储
func NewGridFSBlobStore(bucket *gridfs.Bucket) BlobStore {
	return &gridFSBlobStore{bucket: bucket}
}

// Put 写入内容
func (s *gridFSBlobStore) Put(ctx context.Context, filename, contentType string, r io.Reader) (primitive.ObjectID, error) {
	opts := options.GridFSUpload().SetMetadata(map[string]string{"content_type": contentType})
	stream, err := s.bucket.OpenUploadStream(filename, opts)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("open upload stream: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}
	if _, err := io.Copy(stream, r); err != nil {
		_ = stream.Abort()
		return primitive.NilObjectID, fmt.Errorf("write blob: %w", err)
	}
	if err := stream.Close(); err != nil {
		return primitive.NilObjectID, fmt.Errorf("close upload stream: %w", err)
	}
	id, ok := stream.FileID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected blob id type %T", stream.FileID)
	}
	return id, nil
}

// Open 打开内容
func (s *gridFSBlobStore) Open(ctx context.Context, id primitive.ObjectID) (io.ReadCloser, error) {
	stream, err := s.bucket.OpenDownloadStream(id)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}
	return stream, nil
}

// Remove 删除内容
func (s *gridFSBlobStore) Remove(ctx context.Context, id primitive.ObjectID) error {
	err := s.bucket.Delete(id)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil
	}
	return err
}
