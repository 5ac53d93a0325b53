package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkDeletedAndRestore(t *testing.T) {
	role := &Role{}
	assert.False(t, role.Deleted())

	first := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	MarkDeleted(role, first)
	assert.True(t, role.Deleted())
	require.NotNil(t, role.DeletedAt)
	assert.Equal(t, first, *role.DeletedAt)

	// 重复删除刷新时间
	second := first.Add(time.Hour)
	MarkDeleted(role, second)
	assert.Equal(t, second, *role.DeletedAt)

	Restore(role)
	assert.False(t, role.IsDeleted)
	assert.Nil(t, role.DeletedAt)

	// 未删除时撤销删除无变化
	Restore(role)
	assert.False(t, role.IsDeleted)
}

func TestBeforeCreateKeepsExistingIDs(t *testing.T) {
	b := &BaseModel{UUID: "fixed"}
	require.NoError(t, b.BeforeCreate(nil))
	assert.Equal(t, "fixed", b.UUID)
	assert.Len(t, b.UnifiedUUID, 22)
	assert.NotEqual(t, b.UUID, b.UnifiedUUID)
}

func TestUserCanLogin(t *testing.T) {
	u := &User{IsActive: true}
	require.NoError(t, u.SetPassword("s3cret"))
	assert.True(t, u.ValidatePassword("s3cret"))
	assert.False(t, u.ValidatePassword("wrong"))
	assert.True(t, u.CanLogin())

	MarkDeleted(u, time.Now())
	assert.False(t, u.CanLogin())

	assert.False(t, (&User{}).ValidatePassword(""))
}
