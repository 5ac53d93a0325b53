package service

import (
	"testing"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/internal/repository"
	"github.com/Joker-Pro-Max/Pineapple/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.System{},
		&model.Role{},
		&model.CustomPermission{},
		&model.Category{},
		&model.UserRole{},
		&model.UserSystem{},
		&model.UserPermission{},
		&model.RolePermission{},
	))
	return db
}

// testRepos 基于sqlite的仓储集合
type testRepos struct {
	users       repository.UserRepository
	systems     repository.SystemRepository
	roles       repository.RoleRepository
	permissions repository.PermissionRepository
	grants      repository.GrantRepository
	categories  repository.CategoryRepository
}

func newTestRepos(t *testing.T) *testRepos {
	db := newTestDB(t)
	return &testRepos{
		users:       repository.NewUserRepository(db),
		systems:     repository.NewSystemRepository(db),
		roles:       repository.NewRoleRepository(db),
		permissions: repository.NewPermissionRepository(db),
		grants:      repository.NewGrantRepository(db),
		categories:  repository.NewCategoryRepository(db),
	}
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewFromAddr(mr.Addr())
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func newTestCodec() TokenCodec {
	return NewTokenCodec(NewHMACSigner("test-secret"), 15*time.Minute, 24*time.Hour)
}
