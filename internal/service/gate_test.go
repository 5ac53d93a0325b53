package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	principal *model.Principal
	err       error
	calls     int
}

func (f *fakeAuthenticator) Authenticate(context.Context, string) (*model.Principal, *model.TokenClaims, error) {
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.principal, &model.TokenClaims{}, nil
}

// fakeResolver 只实现判定需要的系统权限查询
type fakeResolver struct {
	PermissionResolver
	held []string
	err  error
}

func (f *fakeResolver) SystemPermissions(_ context.Context, _, _ string, codes []string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []string
	for _, c := range codes {
		for _, h := range f.held {
			if c == h {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

type recordingObserver struct {
	decisions []*model.Decision
}

func (o *recordingObserver) ObserveDecision(_ context.Context, _ *model.AccessRequest, d *model.Decision) {
	o.decisions = append(o.decisions, d)
}

func principalOf(superAdmin bool) *model.Principal {
	return model.NewPrincipal(&model.User{BaseModel: model.BaseModel{UUID: "u1"}}, nil, nil, superAdmin, false)
}

func checkReq(logic model.PermissionLogic, codes ...string) *model.AccessRequest {
	return &model.AccessRequest{
		SystemCode:          "crm",
		RequiredPermissions: codes,
		Logic:               logic,
		BearerToken:         "token",
		Method:              http.MethodGet,
		Path:                "/api/v1/things",
	}
}

func TestGate_NotRequired(t *testing.T) {
	auth := &fakeAuthenticator{err: ErrUnauthenticated}
	obs := &recordingObserver{}
	gate := NewAuthorizationGate(auth, &fakeResolver{}, obs)

	for _, req := range []*model.AccessRequest{
		{},
		{SystemCode: "crm"},
		{RequiredPermissions: []string{"doc.read"}},
	} {
		d := gate.Check(context.Background(), req)
		assert.True(t, d.Allowed)
		assert.Equal(t, model.OutcomeNotRequired, d.Outcome)
	}
	assert.Zero(t, auth.calls, "no authentication without requirements")
	assert.Len(t, obs.decisions, 3)
}

func TestGate_Logic(t *testing.T) {
	cases := []struct {
		name    string
		logic   model.PermissionLogic
		codes   []string
		held    []string
		allowed bool
	}{
		{"or one held", model.LogicOr, []string{"a", "b"}, []string{"b"}, true},
		{"or none held", model.LogicOr, []string{"a", "b"}, []string{"c"}, false},
		{"and all held", model.LogicAnd, []string{"a", "b"}, []string{"a", "b", "c"}, true},
		{"and partly held", model.LogicAnd, []string{"a", "b"}, []string{"a"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			gate := NewAuthorizationGate(&fakeAuthenticator{principal: principalOf(false)}, &fakeResolver{held: c.held})
			d := gate.Check(context.Background(), checkReq(c.logic, c.codes...))
			assert.Equal(t, c.allowed, d.Allowed)
			if c.allowed {
				assert.Equal(t, model.OutcomeGranted, d.Outcome)
				require.NotNil(t, d.Principal)
			} else {
				assert.Equal(t, model.OutcomeForbidden, d.Outcome)
				assert.Equal(t, http.StatusForbidden, d.Status)
			}
		})
	}
}

func TestGate_SuperAdminBypass(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("must not be called")}
	gate := NewAuthorizationGate(&fakeAuthenticator{principal: principalOf(true)}, resolver)

	d := gate.Check(context.Background(), checkReq(model.LogicAnd, "x", "y"))
	assert.True(t, d.Allowed)
	assert.Equal(t, model.OutcomeSuperAdmin, d.Outcome)
	assert.NotNil(t, d.Claims)
}

func TestGate_AuthenticationFailures(t *testing.T) {
	cases := []struct {
		err     error
		outcome model.DecisionOutcome
		status  int
	}{
		{ErrUnauthenticated, model.OutcomeUnauthenticated, http.StatusUnauthorized},
		{ErrInvalidToken, model.OutcomeInvalidToken, http.StatusUnauthorized},
		{ErrTokenExpired, model.OutcomeInvalidToken, http.StatusUnauthorized},
		{ErrTokenRevoked, model.OutcomeInvalidToken, http.StatusUnauthorized},
		{resolverFailure("load user", errors.New("db down")), model.OutcomeResolverFailure, http.StatusServiceUnavailable},
	}
	for _, c := range cases {
		gate := NewAuthorizationGate(&fakeAuthenticator{err: c.err}, &fakeResolver{})
		d := gate.Check(context.Background(), checkReq(model.LogicOr, "a"))
		assert.False(t, d.Allowed)
		assert.Equal(t, c.outcome, d.Outcome, c.err.Error())
		assert.Equal(t, c.status, d.Status)
	}
}

func TestGate_ResolverFailureFailsClosed(t *testing.T) {
	obs := &recordingObserver{}
	gate := NewAuthorizationGate(&fakeAuthenticator{principal: principalOf(false)}, &fakeResolver{err: resolverFailure("x", errors.New("db down"))}, obs)

	d := gate.Check(context.Background(), checkReq(model.LogicOr, "a"))
	assert.False(t, d.Allowed)
	assert.Equal(t, http.StatusServiceUnavailable, d.Status)
	require.Len(t, obs.decisions, 1)
	assert.Same(t, d, obs.decisions[0])
}

func TestSatisfies(t *testing.T) {
	assert.True(t, Satisfies(model.LogicAnd, nil, nil))
	assert.True(t, Satisfies(model.LogicOr, []string{"a"}, []string{"a"}))
	assert.False(t, Satisfies(model.LogicOr, []string{"a"}, nil))
	assert.False(t, Satisfies(model.LogicAnd, []string{"a", "b"}, []string{"b"}))
}

func TestAuthenticator(t *testing.T) {
	w := newGrantWorld(t)
	_, client := newTestRedis(t)
	codec := newTestCodec()
	denylist := NewTokenDenylist(client)
	auth := NewAuthenticator(codec, denylist, w.resolver())
	ctx := context.Background()

	_, _, err := auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	alice, err := w.resolver().Resolve(ctx, w.alice.UUID)
	require.NoError(t, err)
	pair, err := codec.Issue(alice)
	require.NoError(t, err)

	principal, claims, err := auth.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, w.alice.UUID, principal.Subject())
	assert.Equal(t, w.alice.UUID, claims.Subject)

	// 刷新令牌不能当作访问令牌使用
	_, _, err = auth.Authenticate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, denylist.Revoke(ctx, claims.ID, time.Minute))
	_, _, err = auth.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestAuthenticator_PermissionsAreLive(t *testing.T) {
	w := newGrantWorld(t)
	codec := newTestCodec()
	auth := NewAuthenticator(codec, nil, w.resolver())
	gate := NewAuthorizationGate(auth, w.resolver())
	ctx := context.Background()

	alice, err := w.resolver().Resolve(ctx, w.alice.UUID)
	require.NoError(t, err)
	pair, err := codec.Issue(alice)
	require.NoError(t, err)

	req := checkReq(model.LogicOr, "doc.read")
	req.BearerToken = pair.AccessToken
	assert.True(t, gate.Check(ctx, req).Allowed)

	// 令牌未变，但角色被删除后立即失去权限
	editor := w.roles["editor"]
	model.MarkDeleted(editor, time.Now())
	require.NoError(t, w.repos.roles.SaveDeletion(ctx, editor, time.Now()))
	d := gate.Check(ctx, req)
	assert.False(t, d.Allowed)
	assert.Equal(t, model.OutcomeForbidden, d.Outcome)
}
