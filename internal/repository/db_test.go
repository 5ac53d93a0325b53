package repository

import (
	"context"
	"testing"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 单连接内存库，每个测试独立
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

// fixture 一个用户在两个系统中各有一个同名角色
type fixture struct {
	user     *model.User
	crm, erp *model.System
	perms    map[string]*model.CustomPermission
	editor   *model.Role // crm, 启用
	erpRole  *model.Role // erp, 启用，同名
	viewer   *model.Role // crm, 禁用
}

func seed(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{perms: map[string]*model.CustomPermission{}}

	f.user = &model.User{Username: "alice", IsActive: true}
	require.NoError(t, NewUserRepository(db).Create(ctx, f.user))

	systems := NewSystemRepository(db)
	f.crm = &model.System{SystemCode: "crm", SystemName: "CRM"}
	f.erp = &model.System{SystemCode: "erp", SystemName: "ERP"}
	require.NoError(t, systems.Create(ctx, f.crm))
	require.NoError(t, systems.Create(ctx, f.erp))

	perms := NewPermissionRepository(db)
	for _, code := range []string{"read", "write", "delete", "export", "secret", "audit.view"} {
		p := &model.CustomPermission{PermissionCode: code, PermissionName: code}
		require.NoError(t, perms.Create(ctx, p))
		f.perms[code] = p
	}

	roles := NewRoleRepository(db)
	f.editor = &model.Role{RoleName: "editor", IsEnable: true, SystemUUID: f.crm.UUID}
	f.erpRole = &model.Role{RoleName: "editor", IsEnable: true, SystemUUID: f.erp.UUID}
	f.viewer = &model.Role{RoleName: "viewer", IsEnable: false, SystemUUID: f.crm.UUID}
	for _, r := range []*model.Role{f.editor, f.erpRole, f.viewer} {
		require.NoError(t, roles.Create(ctx, r))
	}

	require.NoError(t, roles.SetPermissions(ctx, f.editor.UUID, f.ids("read", "write", "delete")))
	require.NoError(t, roles.SetPermissions(ctx, f.erpRole.UUID, f.ids("export")))
	require.NoError(t, roles.SetPermissions(ctx, f.viewer.UUID, f.ids("secret")))

	users := NewUserRepository(db)
	require.NoError(t, users.SetRoles(ctx, f.user.UUID, []string{f.editor.UUID, f.erpRole.UUID, f.viewer.UUID}))
	require.NoError(t, users.SetPermissions(ctx, f.user.UUID, f.ids("audit.view")))

	// 已删除的权限码不再授予
	del := f.perms["delete"]
	model.MarkDeleted(del, del.CreateAt)
	require.NoError(t, perms.SaveDeletion(ctx, del, del.CreateAt))
	return f
}

func (f *fixture) ids(codes ...string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		out = append(out, f.perms[c].UUID)
	}
	return out
}
