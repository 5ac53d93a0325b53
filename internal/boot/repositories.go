package boot

import (
	"github.com/Joker-Pro-Max/Pineapple/internal/repository"
	"github.com/Joker-Pro-Max/Pineapple/pkg/database"

	"gorm.io/gorm"
)

// Repositories 包含所有仓储实例
type Repositories struct {
	UserRepo       repository.UserRepository
	SystemRepo     repository.SystemRepository
	RoleRepo       repository.RoleRepository
	PermissionRepo repository.PermissionRepository
	GrantRepo      repository.GrantRepository
	CategoryRepo   repository.CategoryRepository
	FileRepo       repository.FileRepository
}

// InitRepositories 初始化所有仓储实例，mongodb为nil时不提供文件元数据仓储
func InitRepositories(db *gorm.DB, mongodb *database.MongoClient) *Repositories {
	repos := &Repositories{
		UserRepo:       repository.NewUserRepository(db),
		SystemRepo:     repository.NewSystemRepository(db),
		RoleRepo:       repository.NewRoleRepository(db),
		PermissionRepo: repository.NewPermissionRepository(db),
		GrantRepo:      repository.NewGrantRepository(db),
		CategoryRepo:   repository.NewCategoryRepository(db),
	}
	if mongodb != nil {
		repos.FileRepo = repository.NewFileRepository(mongodb)
	}
	return repos
}
