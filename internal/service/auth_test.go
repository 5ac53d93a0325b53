package service

import (
	"context"
	"testing"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubWechat 返回预设的会话
type stubWechat struct {
	session *WechatSession
	err     error
}

func (s *stubWechat) Code2Session(context.Context, string) (*WechatSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	copied := *s.session
	return &copied, nil
}

type authFixture struct {
	world    *grantWorld
	svc      AuthService
	codec    TokenCodec
	denylist TokenDenylist
	wechat   *stubWechat
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	world := newGrantWorld(t)
	_, client := newTestRedis(t)
	codec := newTestCodec()
	denylist := NewTokenDenylist(client)
	wechat := &stubWechat{session: &WechatSession{OpenID: "oABCDEFGHIJ"}}
	return &authFixture{
		world:    world,
		svc:      NewAuthService(world.repos.users, world.repos.systems, world.resolver(), codec, denylist, wechat),
		codec:    codec,
		denylist: denylist,
		wechat:   wechat,
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, &model.RegisterRequest{Email: " carol@example.com ", Password: "secret1", Nickname: "carol"})
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, "carol@example.com", *resp.User.Email)
	assert.Nil(t, resp.User.Phone)
	assert.NotEmpty(t, resp.Access)
	assert.NotEmpty(t, resp.Refresh)
	assert.EqualValues(t, 15*60, resp.ExpiresIn)
	assert.Empty(t, resp.Permissions)

	_, err = f.svc.Register(ctx, &model.RegisterRequest{Email: "carol@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, ErrAccountExists)
	_, err = f.svc.Register(ctx, &model.RegisterRequest{Password: "secret2"})
	assert.ErrorIs(t, err, ErrAccountRequired)

	login, err := f.svc.Login(ctx, &model.LoginRequest{Account: "carol@example.com", Password: "secret1"})
	require.NoError(t, err)
	claims, err := f.codec.Parse(login.Access, model.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.UUID, claims.Subject)

	_, err = f.svc.Login(ctx, &model.LoginRequest{Account: "carol@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, &model.LoginRequest{Account: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_LoginRejectsInactive(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, &model.RegisterRequest{Phone: "13800000000", Password: "secret1"})
	require.NoError(t, err)

	user, err := f.world.repos.users.GetByUUID(ctx, resp.User.UUID)
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, f.world.repos.users.Update(ctx, user, "is_active"))

	_, err = f.svc.Login(ctx, &model.LoginRequest{Account: "13800000000", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, &model.RegisterRequest{Email: "dave@example.com", Password: "secret1"})
	require.NoError(t, err)

	refreshed, err := f.svc.Refresh(ctx, resp.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.Access)

	_, err = f.svc.Refresh(ctx, resp.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := f.codec.Parse(resp.Access, model.AccessToken)
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(ctx, claims, resp.Refresh))

	revoked, err := f.denylist.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = f.svc.Refresh(ctx, resp.Refresh)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	authenticator := NewAuthenticator(f.codec, f.denylist, f.world.resolver())
	_, _, err = authenticator.Authenticate(ctx, resp.Access)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	assert.ErrorIs(t, f.svc.Logout(ctx, nil, ""), ErrUnauthenticated)
}

func TestAuthService_RefreshResolvesCurrentGrants(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, &model.RegisterRequest{Email: "erin@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Empty(t, resp.Permissions)

	// 签发后才授予的角色在刷新后生效
	require.NoError(t, f.world.repos.users.SetRoles(ctx, resp.User.UUID, []string{f.world.roles["editor"].UUID}))
	refreshed, err := f.svc.Refresh(ctx, resp.Refresh)
	require.NoError(t, err)
	claims, err := f.codec.Parse(refreshed.Access, model.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.UUID, claims.Subject)
	assert.Equal(t, []string{"editor"}, claims.Roles)
	assert.Equal(t, []string{"doc.read"}, claims.Permissions)

	user, err := f.world.repos.users.GetByUUID(ctx, resp.User.UUID)
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, f.world.repos.users.Update(ctx, user, "is_active"))

	_, err = f.svc.Refresh(ctx, resp.Refresh)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthService_LogoutRejectsForeignRefresh(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	a, err := f.svc.Register(ctx, &model.RegisterRequest{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)
	b, err := f.svc.Register(ctx, &model.RegisterRequest{Email: "b@example.com", Password: "secret1"})
	require.NoError(t, err)

	claims, err := f.codec.Parse(a.Access, model.AccessToken)
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.Logout(ctx, claims, b.Refresh), ErrInvalidToken)

	// 另一个用户的刷新令牌仍然可用
	_, err = f.svc.Refresh(ctx, b.Refresh)
	assert.NoError(t, err)
}

func TestAuthService_WechatLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.svc.WechatLogin(ctx, &model.WechatLoginRequest{Code: "c1", Nickname: "微信用户"})
	require.NoError(t, err)
	assert.Equal(t, "wx_oABCDE", resp.User.Username)
	assert.Equal(t, "微信用户", resp.User.WxNickname)

	// 同一openid再次登录，补全unionid
	f.wechat.session.UnionID = "union-1"
	again, err := f.svc.WechatLogin(ctx, &model.WechatLoginRequest{Code: "c2"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.UUID, again.User.UUID)

	user, err := f.world.repos.users.GetByUUID(ctx, resp.User.UUID)
	require.NoError(t, err)
	require.NotNil(t, user.WxUnionID)
	assert.Equal(t, "union-1", *user.WxUnionID)

	f.wechat.err = ErrWechatLogin
	_, err = f.svc.WechatLogin(ctx, &model.WechatLoginRequest{Code: "c3"})
	assert.ErrorIs(t, err, ErrWechatLogin)
}

func TestAuthService_MyInfo(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	p, err := f.world.resolver().Resolve(ctx, f.world.alice.UUID)
	require.NoError(t, err)

	info, err := f.svc.MyInfo(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, f.world.alice.UUID, info.UUID)
	assert.Len(t, info.Roles, 3)
	for _, r := range info.Roles {
		assert.Equal(t, "crm", r.SystemCode)
	}
	assert.Equal(t, []string{"doc.read", "doc.write"}, info.Permissions)
	require.Len(t, info.Systems, 1)
	assert.Equal(t, "crm", info.Systems[0].SystemCode)
	assert.False(t, info.IsSuperAdmin)

	ghost := model.NewPrincipal(&model.User{BaseModel: model.BaseModel{UUID: "ghost"}}, nil, nil, false, false)
	_, err = f.svc.MyInfo(ctx, ghost)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
