package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/internal/repository"
	"github.com/Joker-Pro-Max/Pineapple/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
)

// FileUpload 上传参数，Content需要支持Seek以便计算哈希后重新读取
type FileUpload struct {
	CategoryUUID string
	Filename     string
	ContentType  string
	Size         int64
	Content      io.ReadSeeker
}

// FileService 文件服务接口
type FileService interface {
	// Upload 上传文件，内容相同的文件只保存一份，返回值created表示是否新建
	Upload(ctx context.Context, creatorUUID string, upload *FileUpload) (file *model.FileMeta, created bool, err error)
	// Get 获取未删除的文件信息
	Get(ctx context.Context, uuid string) (*model.FileMeta, error)
	// Download 打开文件内容，调用方负责关闭
	Download(ctx context.Context, uuid string) (*model.FileMeta, io.ReadCloser, error)
	// List 获取文件列表
	List(ctx context.Context, filter *model.FileFilter, page, pageSize int) ([]*model.FileMeta, int64, error)
	// Delete 软删除，文件内容保留以便撤销
	Delete(ctx context.Context, uuid string) (*model.FileMeta, error)
	// CancelDelete 撤销删除
	CancelDelete(ctx context.Context, uuid string) (*model.FileMeta, error)
}

// fileService 文件服务实现
type fileService struct {
	fileRepo     repository.FileRepository
	blobs        repository.BlobStore
	categoryRepo repository.CategoryRepository
	maxSize      int64
}

// NewFileService 创建文件服务实例，maxSize<=0表示不限制大小
func NewFileService(
	fileRepo repository.FileRepository,
	blobs repository.BlobStore,
	categoryRepo repository.CategoryRepository,
	maxSize int64,
) FileService {
	return &fileService{
		fileRepo:     fileRepo,
		blobs:        blobs,
		categoryRepo: categoryRepo,
		maxSize:      maxSize,
	}
}

// Upload 上传文件
func (s *fileService) Upload(ctx context.Context, creatorUUID string, upload *FileUpload) (*model.FileMeta, bool, error) {
	if s.maxSize > 0 && upload.Size > s.maxSize {
		return nil, false, ErrFileTooLarge
	}

	category, err := s.categoryRepo.GetByUUID(ctx, upload.CategoryUUID)
	if err != nil {
		return nil, false, err
	}
	if category == nil || category.IsDeleted {
		return nil, false, ErrCategoryNotFound
	}

	// 计算文件哈希
	hash := sha256.New()
	size, err := io.Copy(hash, upload.Content)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash file: %w", err)
	}
	if s.maxSize > 0 && size > s.maxSize {
		return nil, false, ErrFileTooLarge
	}
	fileHash := hex.EncodeToString(hash.Sum(nil))

	existing, err := s.fileRepo.GetByHash(ctx, fileHash)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return s.reuse(ctx, existing)
	}

	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return nil, false, fmt.Errorf("failed to rewind file: %w", err)
	}
	blobID, err := s.blobs.Put(ctx, upload.Filename, upload.ContentType, upload.Content)
	if err != nil {
		return nil, false, fmt.Errorf("failed to store file: %w", err)
	}

	file := &model.FileMeta{
		CategoryUUID: category.UUID,
		Filename:     upload.Filename,
		ContentType:  upload.ContentType,
		FileSize:     size,
		FileHash:     fileHash,
		BlobID:       blobID,
		CreatedBy:    optional(creatorUUID),
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		// 并发上传相同内容时以先写入的记录为准
		if mongo.IsDuplicateKeyError(err) {
			if rmErr := s.blobs.Remove(ctx, blobID); rmErr != nil {
				logger.Warn("[FILE] failed to remove orphan blob %s: %v", blobID.Hex(), rmErr)
			}
			existing, getErr := s.fileRepo.GetByHash(ctx, fileHash)
			if getErr != nil {
				return nil, false, getErr
			}
			if existing != nil {
				return s.reuse(ctx, existing)
			}
		}
		_ = s.blobs.Remove(ctx, blobID)
		return nil, false, fmt.Errorf("failed to save file meta: %w", err)
	}

	logger.Info("[FILE] uploaded uuid=%s hash=%s size=%d", file.UUID, fileHash, size)
	return file, true, nil
}

// reuse 返回已存在的文件，已删除的先恢复
func (s *fileService) reuse(ctx context.Context, file *model.FileMeta) (*model.FileMeta, bool, error) {
	if file.IsDeleted {
		if err := restoreDeleted(ctx, file, s.fileRepo.SaveDeletion); err != nil {
			return nil, false, fmt.Errorf("failed to restore file: %w", err)
		}
		logger.Info("[FILE] restored by re-upload uuid=%s", file.UUID)
	}
	return file, false, nil
}

// Get 获取未删除的文件信息
func (s *fileService) Get(ctx context.Context, uuid string) (*model.FileMeta, error) {
	file, err := s.fileRepo.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if file == nil || file.IsDeleted {
		return nil, ErrFileNotFound
	}
	return file, nil
}

// Download 打开文件内容
func (s *fileService) Download(ctx context.Context, uuid string) (*model.FileMeta, io.ReadCloser, error) {
	file, err := s.Get(ctx, uuid)
	if err != nil {
		return nil, nil, err
	}
	content, err := s.blobs.Open(ctx, file.BlobID)
	if err != nil {
		if errors.Is(err, repository.ErrBlobNotFound) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, err
	}
	return file, content, nil
}

// List 获取文件列表
func (s *fileService) List(ctx context.Context, filter *model.FileFilter, page, pageSize int) ([]*model.FileMeta, int64, error) {
	return s.fileRepo.List(ctx, filter, int64((page-1)*pageSize), int64(pageSize))
}

// Delete 软删除文件
func (s *fileService) Delete(ctx context.Context, uuid string) (*model.FileMeta, error) {
	file, err := s.fileRepo.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, ErrFileNotFound
	}
	if err := softDelete(ctx, file, s.fileRepo.SaveDeletion); err != nil {
		return nil, fmt.Errorf("failed to delete file: %w", err)
	}
	return file, nil
}

// CancelDelete 撤销删除
func (s *fileService) CancelDelete(ctx context.Context, uuid string) (*model.FileMeta, error) {
	file, err := s.fileRepo.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, ErrFileNotFound
	}
	if err := restoreDeleted(ctx, file, s.fileRepo.SaveDeletion); err != nil {
		return nil, fmt.Errorf("failed to restore file: %w", err)
	}
	return file, nil
}
