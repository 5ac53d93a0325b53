package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveDeletionOnlyWritesDeletionFields(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	roles := NewRoleRepository(db)
	ctx := context.Background()

	role, err := roles.GetByUUID(ctx, f.editor.UUID)
	require.NoError(t, err)
	require.NotNil(t, role)

	// 未保存的修改不应随删除一起落库
	role.RoleName = "renamed"
	role.IsEnable = false
	now := time.Now().Add(time.Minute)
	model.MarkDeleted(role, now)
	require.NoError(t, roles.SaveDeletion(ctx, role, now))

	reloaded, err := roles.GetByUUID(ctx, f.editor.UUID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsDeleted)
	require.NotNil(t, reloaded.DeletedAt)
	assert.WithinDuration(t, now, *reloaded.DeletedAt, time.Second)
	assert.Equal(t, "editor", reloaded.RoleName)
	assert.True(t, reloaded.IsEnable)

	model.Restore(reloaded)
	require.NoError(t, roles.SaveDeletion(ctx, reloaded, time.Now()))
	restored, err := roles.GetByUUID(ctx, f.editor.UUID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	assert.Nil(t, restored.DeletedAt)
}

func TestListExcludesDeleted(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	systems := NewSystemRepository(db)
	ctx := context.Background()

	list, total, err := systems.List(ctx, nil, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)

	now := time.Now()
	model.MarkDeleted(f.crm, now)
	require.NoError(t, systems.SaveDeletion(ctx, f.crm, now))

	list, total, err = systems.List(ctx, &model.SystemFilter{}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "erp", list[0].SystemCode)

	// 按uuid和系统码查询仍能取到已删除记录
	got, err := systems.GetByCode(ctx, "crm")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsDeleted)

	missing, err := systems.GetByUUID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRoleListBySystemCode(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	roles := NewRoleRepository(db)

	list, total, err := roles.List(context.Background(), &model.RoleFilter{SystemCode: "crm"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	names := []string{list[0].RoleName, list[1].RoleName}
	assert.ElementsMatch(t, []string{"editor", "viewer"}, names)
	for _, r := range list {
		require.NotNil(t, r.System)
		assert.Equal(t, "crm", r.System.SystemCode)
	}
}

func TestUserRepository_RolesAndReachableSystems(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	ctx := context.Background()
	users := NewUserRepository(db)

	roles, err := users.GetRoles(ctx, f.user.UUID)
	require.NoError(t, err)
	assert.Len(t, roles, 3)

	reachable, err := NewSystemRepository(db).ListReachable(ctx, f.user.UUID)
	require.NoError(t, err)
	require.Len(t, reachable, 2)
	assert.Equal(t, "crm", reachable[0].SystemCode)
	assert.Equal(t, "erp", reachable[1].SystemCode)

	// 重新赋值会覆盖旧关联
	require.NoError(t, users.SetRoles(ctx, f.user.UUID, []string{f.viewer.UUID, f.viewer.UUID}))
	roles, err = users.GetRoles(ctx, f.user.UUID)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "viewer", roles[0].RoleName)

	reachable, err = NewSystemRepository(db).ListReachable(ctx, f.user.UUID)
	require.NoError(t, err)
	assert.Empty(t, reachable, "disabled role grants no system")

	require.NoError(t, users.SetSystems(ctx, f.user.UUID, []string{f.erp.UUID}))
	reachable, err = NewSystemRepository(db).ListReachable(ctx, f.user.UUID)
	require.NoError(t, err)
	require.Len(t, reachable, 1)
	assert.Equal(t, "erp", reachable[0].SystemCode)
}

func TestUserRepository_CountAndSuperuser(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	users := NewUserRepository(db)
	ctx := context.Background()

	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	ok, err := users.HasSuperuser(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, users.Create(ctx, &model.User{Username: "root", IsActive: true, IsSuperuser: true}))
	ok, err = users.HasSuperuser(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
