package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrincipalHasPermission(t *testing.T) {
	user := &User{BaseModel: BaseModel{UUID: "u1", UnifiedUUID: "uu1"}}

	p := NewPrincipal(user, []string{"editor"}, []string{"doc.read", "doc.write"}, false, false)
	assert.Equal(t, "u1", p.Subject())
	assert.Equal(t, "uu1", p.UnifiedID())
	assert.True(t, p.HasPermission("doc.read"))
	assert.False(t, p.HasPermission("doc.delete"))
	assert.False(t, p.IsAdmin())

	super := NewPrincipal(user, []string{RoleSuperAdmin}, nil, true, false)
	assert.True(t, super.HasPermission("anything"))
	assert.True(t, super.IsAdmin())
}

func TestPrincipalCopiesSlices(t *testing.T) {
	roles := []string{"a"}
	perms := []string{"p"}
	p := NewPrincipal(&User{}, roles, perms, false, false)

	roles[0] = "changed"
	perms[0] = "changed"
	assert.Equal(t, []string{"a"}, p.RoleNames())
	assert.Equal(t, []string{"p"}, p.EffectivePermissions())

	out := p.RoleNames()
	out[0] = "mutated"
	assert.Equal(t, []string{"a"}, p.RoleNames())
}
