package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuperuserService_EnsureSuperuser(t *testing.T) {
	repos := newTestRepos(t)
	svc := NewSuperuserService(repos.users)
	ctx := context.Background()

	account, password, created, err := svc.EnsureSuperuser(ctx)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, DefaultSuperuserAccount, account)
	assert.NotEmpty(t, password)

	user, err := repos.users.GetByAccount(ctx, account)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.IsSuperuser)
	assert.True(t, user.ValidatePassword(password))

	_, _, created, err = svc.EnsureSuperuser(ctx)
	require.NoError(t, err)
	assert.False(t, created)

	p, err := NewPermissionResolver(repos.users, repos.grants).Resolve(ctx, user.UUID)
	require.NoError(t, err)
	assert.True(t, p.IsSuperAdmin())
}

func TestSuperuserService_CreateSuperuser(t *testing.T) {
	repos := newTestRepos(t)
	svc := NewSuperuserService(repos.users)
	ctx := context.Background()

	user, err := svc.CreateSuperuser(ctx, "13900000000", "secret1")
	require.NoError(t, err)
	require.NotNil(t, user.Phone)
	assert.Nil(t, user.Email)

	_, err = svc.CreateSuperuser(ctx, "13900000000", "secret1")
	assert.ErrorIs(t, err, ErrAccountExists)
	_, err = svc.CreateSuperuser(ctx, "  ", "secret1")
	assert.ErrorIs(t, err, ErrAccountRequired)

	// 停用的超级用户不算
	user.IsActive = false
	require.NoError(t, repos.users.Update(ctx, user, "is_active"))
	has, err := repos.users.HasSuperuser(ctx)
	require.NoError(t, err)
	assert.False(t, has)

}

func TestSuperuserService_ResetPassword(t *testing.T) {
	repos := newTestRepos(t)
	svc := NewSuperuserService(repos.users)
	ctx := context.Background()

	user, err := svc.CreateSuperuser(ctx, "root@example.com", "old-secret")
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, repos.users.Update(ctx, user, "is_active"))

	password, err := svc.ResetPassword(ctx, "root@example.com", "")
	require.NoError(t, err)
	assert.NotEmpty(t, password)

	reloaded, err := repos.users.GetByUUID(ctx, user.UUID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsActive)
	assert.True(t, reloaded.ValidatePassword(password))
	assert.False(t, reloaded.ValidatePassword("old-secret"))

	_, err = svc.ResetPassword(ctx, "nobody@example.com", "x")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
