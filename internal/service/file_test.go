package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"testing"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// memFileRepo 内存文件元信息仓储，file_hash唯一
type memFileRepo struct {
	files map[string]*model.FileMeta
	// beforeCreate 在写入前调用，用于模拟并发上传
	beforeCreate func(file *model.FileMeta)
}

func newMemFileRepo() *memFileRepo {
	return &memFileRepo{files: map[string]*model.FileMeta{}}
}

func (r *memFileRepo) Create(_ context.Context, file *model.FileMeta) error {
	if r.beforeCreate != nil {
		hook := r.beforeCreate
		r.beforeCreate = nil
		hook(file)
	}
	for _, f := range r.files {
		if f.FileHash == file.FileHash {
			return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "duplicate key"}}}
		}
	}
	if file.UUID == "" {
		file.UUID = model.NewShortID()
	}
	file.CreateAt = time.Now()
	copied := *file
	r.files[file.UUID] = &copied
	return nil
}

func (r *memFileRepo) GetByUUID(_ context.Context, uuid string) (*model.FileMeta, error) {
	f, ok := r.files[uuid]
	if !ok {
		return nil, nil
	}
	copied := *f
	return &copied, nil
}

func (r *memFileRepo) GetByHash(_ context.Context, hash string) (*model.FileMeta, error) {
	for _, f := range r.files {
		if f.FileHash == hash {
			copied := *f
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memFileRepo) SaveDeletion(_ context.Context, file *model.FileMeta, now time.Time) error {
	stored := r.files[file.UUID]
	stored.SoftDelete = file.SoftDelete
	stored.UpdateAt = now
	return nil
}

func (r *memFileRepo) List(_ context.Context, filter *model.FileFilter, offset, limit int64) ([]*model.FileMeta, int64, error) {
	out := make([]*model.FileMeta, 0)
	for _, f := range r.files {
		if f.IsDeleted && (filter == nil || !filter.IncludeDeleted) {
			continue
		}
		out = append(out, f)
	}
	return out, int64(len(out)), nil
}

func (r *memFileRepo) EnsureIndexes(context.Context) error { return nil }

// memBlobStore 内存文件内容存储
type memBlobStore struct {
	blobs map[primitive.ObjectID][]byte
	puts  int
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{blobs: map[primitive.ObjectID][]byte{}}
}

func (s *memBlobStore) Put(_ context.Context, _, _ string, r io.Reader) (primitive.ObjectID, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id := primitive.NewObjectID()
	s.blobs[id] = data
	s.puts++
	return id, nil
}

func (s *memBlobStore) Open(_ context.Context, id primitive.ObjectID) (io.ReadCloser, error) {
	data, ok := s.blobs[id]
	if !ok {
		return nil, repository.ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memBlobStore) Remove(_ context.Context, id primitive.ObjectID) error {
	delete(s.blobs, id)
	return nil
}

type fileFixture struct {
	svc      FileService
	files    *memFileRepo
	blobs    *memBlobStore
	category *model.Category
}

func newFileFixture(t *testing.T, maxSize int64) *fileFixture {
	t.Helper()
	repos := newTestRepos(t)
	category, err := NewCategoryService(repos.categories).Create(context.Background(), "", &model.CreateCategoryRequest{Name: "docs"})
	require.NoError(t, err)

	files := newMemFileRepo()
	blobs := newMemBlobStore()
	return &fileFixture{
		svc:      NewFileService(files, blobs, repos.categories, maxSize),
		files:    files,
		blobs:    blobs,
		category: category,
	}
}

func (f *fileFixture) upload(content string) *FileUpload {
	return &FileUpload{
		CategoryUUID: f.category.UUID,
		Filename:     "a.txt",
		ContentType:  "text/plain",
		Size:         int64(len(content)),
		Content:      bytes.NewReader([]byte(content)),
	}
}

func sha(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func TestFileService_UploadDeduplicates(t *testing.T) {
	f := newFileFixture(t, 0)
	ctx := context.Background()

	first, created, err := f.svc.Upload(ctx, "u1", f.upload("hello"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, sha("hello"), first.FileHash)
	assert.EqualValues(t, 5, first.FileSize)
	require.NotNil(t, first.CreatedBy)
	assert.Equal(t, "u1", *first.CreatedBy)

	second, created, err := f.svc.Upload(ctx, "u2", f.upload("hello"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.UUID, second.UUID)
	assert.Equal(t, 1, f.blobs.puts)

	_, created, err = f.svc.Upload(ctx, "u1", f.upload("world"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, f.blobs.blobs, 2)
}

func TestFileService_ReuploadRestoresDeleted(t *testing.T) {
	f := newFileFixture(t, 0)
	ctx := context.Background()

	file, _, err := f.svc.Upload(ctx, "", f.upload("hello"))
	require.NoError(t, err)

	deleted, err := f.svc.Delete(ctx, file.UUID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)
	_, err = f.svc.Get(ctx, file.UUID)
	assert.ErrorIs(t, err, ErrFileNotFound)
	// 删除不会移除文件内容
	assert.Len(t, f.blobs.blobs, 1)

	again, created, err := f.svc.Upload(ctx, "", f.upload("hello"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, file.UUID, again.UUID)
	assert.False(t, again.IsDeleted)

	got, err := f.svc.Get(ctx, file.UUID)
	require.NoError(t, err)
	assert.False(t, got.IsDeleted)
}

func TestFileService_ConcurrentDuplicate(t *testing.T) {
	f := newFileFixture(t, 0)
	ctx := context.Background()

	// 另一个请求抢先写入了相同内容
	winner := &model.FileMeta{UUID: "winner", FileHash: sha("hello"), CategoryUUID: f.category.UUID}
	f.files.beforeCreate = func(*model.FileMeta) {
		f.files.files[winner.UUID] = winner
	}

	file, created, err := f.svc.Upload(ctx, "", f.upload("hello"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "winner", file.UUID)
	assert.Empty(t, f.blobs.blobs, "orphan blob removed")
}

func TestFileService_Validation(t *testing.T) {
	f := newFileFixture(t, 4)
	ctx := context.Background()

	_, _, err := f.svc.Upload(ctx, "", f.upload("hello"))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	// 声明的大小不可信时以实际内容为准
	lying := f.upload("hello")
	lying.Size = 1
	_, _, err = f.svc.Upload(ctx, "", lying)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	missing := f.upload("hi")
	missing.CategoryUUID = "nope"
	_, _, err = f.svc.Upload(ctx, "", missing)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.Zero(t, f.blobs.puts)
}

func TestFileService_Download(t *testing.T) {
	f := newFileFixture(t, 0)
	ctx := context.Background()

	file, _, err := f.svc.Upload(ctx, "", f.upload("hello"))
	require.NoError(t, err)

	meta, content, err := f.svc.Download(ctx, file.UUID)
	require.NoError(t, err)
	defer content.Close()
	data, err := io.ReadAll(content)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "a.txt", meta.Filename)

	_, _, err = f.svc.Download(ctx, "missing")
	assert.ErrorIs(t, err, ErrFileNotFound)

	// 内容丢失按文件不存在处理
	delete(f.blobs.blobs, file.BlobID)
	_, _, err = f.svc.Download(ctx, file.UUID)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestFileService_ListAndCancelDelete(t *testing.T) {
	f := newFileFixture(t, 0)
	ctx := context.Background()

	a, _, err := f.svc.Upload(ctx, "", f.upload("a"))
	require.NoError(t, err)
	_, _, err = f.svc.Upload(ctx, "", f.upload("b"))
	require.NoError(t, err)

	_, err = f.svc.Delete(ctx, a.UUID)
	require.NoError(t, err)
	_, total, err := f.svc.List(ctx, nil, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	restored, err := f.svc.CancelDelete(ctx, a.UUID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	_, total, err = f.svc.List(ctx, nil, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	_, err = f.svc.Delete(ctx, "missing")
	assert.ErrorIs(t, err, ErrFileNotFound)
}
