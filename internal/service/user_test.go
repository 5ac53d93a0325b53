package service

import (
	"context"
	"testing"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_SetRolesSuperAdminGuard(t *testing.T) {
	w := newGrantWorld(t)
	ctx := context.Background()
	users := NewUserService(w.repos.users, w.repos.roles, w.repos.systems, w.repos.permissions)
	admin := model.NewPrincipal(w.alice, nil, nil, false, true)
	root := model.NewPrincipal(w.bob, nil, nil, true, false)
	superadmin := w.roles[model.RoleSuperAdmin].UUID
	editor := w.roles["editor"].UUID

	// 管理员不能给自己授予superadmin
	err := users.SetRoles(ctx, admin, w.alice.UUID, []string{editor, superadmin})
	assert.ErrorIs(t, err, ErrSuperAdminRequired)
	p, err := w.resolver().Resolve(ctx, w.alice.UUID)
	require.NoError(t, err)
	assert.False(t, p.IsSuperAdmin())

	// 也不能收回别人的superadmin
	err = users.SetRoles(ctx, admin, w.bob.UUID, []string{editor})
	assert.ErrorIs(t, err, ErrSuperAdminRequired)

	require.NoError(t, users.SetRoles(ctx, admin, w.alice.UUID, []string{editor}))

	require.NoError(t, users.SetRoles(ctx, root, w.alice.UUID, []string{editor, superadmin}))
	p, err = w.resolver().Resolve(ctx, w.alice.UUID)
	require.NoError(t, err)
	assert.True(t, p.IsSuperAdmin())

	// 命令行等内部调用不受限制
	require.NoError(t, users.SetRoles(ctx, nil, w.alice.UUID, []string{editor}))
}

func TestRoleService_SuperAdminRoleGuard(t *testing.T) {
	w := newGrantWorld(t)
	ctx := context.Background()
	roles := NewRoleService(w.repos.roles, w.repos.systems, w.repos.permissions)
	admin := model.NewPrincipal(w.alice, nil, nil, false, true)
	root := model.NewPrincipal(w.bob, nil, nil, true, false)
	superadmin := w.roles[model.RoleSuperAdmin]
	off := false

	_, err := roles.Create(ctx, admin, &model.CreateRoleRequest{RoleName: model.RoleSuperAdmin, SystemCode: "crm"})
	assert.ErrorIs(t, err, ErrSuperAdminRequired)
	_, err = roles.Update(ctx, admin, w.roles["editor"].UUID, &model.UpdateRoleRequest{RoleName: strPtr(model.RoleSuperAdmin)})
	assert.ErrorIs(t, err, ErrSuperAdminRequired)
	_, err = roles.Update(ctx, admin, superadmin.UUID, &model.UpdateRoleRequest{IsEnable: &off})
	assert.ErrorIs(t, err, ErrSuperAdminRequired)
	_, err = roles.Delete(ctx, admin, superadmin.UUID)
	assert.ErrorIs(t, err, ErrSuperAdminRequired)
	_, err = roles.CancelDelete(ctx, admin, superadmin.UUID)
	assert.ErrorIs(t, err, ErrSuperAdminRequired)

	auditor, err := roles.Create(ctx, admin, &model.CreateRoleRequest{RoleName: "auditor", SystemCode: "crm"})
	require.NoError(t, err)
	require.NotNil(t, auditor.CreatedBy)
	assert.Equal(t, w.alice.UUID, *auditor.CreatedBy)

	again, err := roles.Create(ctx, root, &model.CreateRoleRequest{RoleName: model.RoleSuperAdmin, SystemCode: "crm"})
	require.NoError(t, err)
	assert.Equal(t, superadmin.UUID, again.UUID)
}
