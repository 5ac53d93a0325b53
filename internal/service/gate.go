package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/pkg/logger"
)

// DecisionObserver 判定结果的旁路消费者（审计、指标），不影响判定本身
type DecisionObserver interface {
	ObserveDecision(ctx context.Context, req *model.AccessRequest, decision *model.Decision)
}

// AuthorizationGate 按请求头声明的系统与权限码做放行/拒绝判定
type AuthorizationGate interface {
	Check(ctx context.Context, req *model.AccessRequest) *model.Decision
}

// authorizationGate 授权判定实现
type authorizationGate struct {
	authenticator Authenticator
	resolver      PermissionResolver
	observers     []DecisionObserver
}

// NewAuthorizationGate 创建授权判定实例
func NewAuthorizationGate(authenticator Authenticator, resolver PermissionResolver, observers ...DecisionObserver) AuthorizationGate {
	return &authorizationGate{
		authenticator: authenticator,
		resolver:      resolver,
		observers:     observers,
	}
}

// Check 判定一次请求
func (g *authorizationGate) Check(ctx context.Context, req *model.AccessRequest) *model.Decision {
	decision := g.decide(ctx, req)
	g.report(ctx, req, decision)
	return decision
}

func (g *authorizationGate) decide(ctx context.Context, req *model.AccessRequest) *model.Decision {
	// 未声明系统或权限码时不做限制
	if !req.RequiresCheck() {
		return model.Allow(model.OutcomeNotRequired, nil)
	}

	principal, claims, err := g.authenticator.Authenticate(ctx, req.BearerToken)
	if err != nil {
		switch {
		case IsTokenError(err):
			return model.Deny(model.OutcomeInvalidToken, nil, err)
		case errors.Is(err, ErrResolverFailure):
			return model.Deny(model.OutcomeResolverFailure, nil, err)
		default:
			return model.Deny(model.OutcomeUnauthenticated, nil, err)
		}
	}

	if principal.IsSuperAdmin() {
		return allowWithClaims(model.OutcomeSuperAdmin, principal, claims)
	}

	held, err := g.resolver.SystemPermissions(ctx, principal.Subject(), req.SystemCode, req.RequiredPermissions)
	if err != nil {
		return model.Deny(model.OutcomeResolverFailure, principal, err)
	}
	if !Satisfies(req.Logic, req.RequiredPermissions, held) {
		return model.Deny(model.OutcomeForbidden, principal, ErrForbidden)
	}
	return allowWithClaims(model.OutcomeGranted, principal, claims)
}

// allowWithClaims 放行时带上令牌声明，后续中间件不再重复认证
func allowWithClaims(outcome model.DecisionOutcome, principal *model.Principal, claims *model.TokenClaims) *model.Decision {
	d := model.Allow(outcome, principal)
	d.Claims = claims
	return d
}

// Satisfies AND要求全部持有，OR要求至少持有一个
func Satisfies(logic model.PermissionLogic, required, held []string) bool {
	if len(required) == 0 {
		return true
	}
	heldSet := make(map[string]struct{}, len(held))
	for _, code := range held {
		heldSet[code] = struct{}{}
	}
	if logic == model.LogicAnd {
		for _, code := range required {
			if _, ok := heldSet[code]; !ok {
				return false
			}
		}
		return true
	}
	for _, code := range required {
		if _, ok := heldSet[code]; ok {
			return true
		}
	}
	return false
}

// report 记录日志并通知观察者
func (g *authorizationGate) report(ctx context.Context, req *model.AccessRequest, d *model.Decision) {
	if d.Outcome == model.OutcomeNotRequired {
		logger.Debug("[PERMISSION] ALLOW outcome=%s %s %s", d.Outcome, req.Method, req.Path)
	} else {
		subject := "-"
		if d.Principal != nil {
			subject = d.Principal.Subject()
		}
		verdict := "DENY"
		if d.Allowed {
			verdict = "ALLOW"
		}
		line := "[PERMISSION] %s outcome=%s user=%s system=%s required=%s logic=%s %s %s"
		args := []interface{}{verdict, d.Outcome, subject, req.SystemCode,
			strings.Join(req.RequiredPermissions, ","), req.Logic, req.Method, req.Path}
		switch d.Outcome {
		case model.OutcomeResolverFailure:
			logger.Error(line+" err=%v", append(args, d.Err)...)
		case model.OutcomeForbidden, model.OutcomeUnauthenticated, model.OutcomeInvalidToken:
			logger.Warn(line, args...)
		default:
			logger.Info(line, args...)
		}
	}

	for _, o := range g.observers {
		o.ObserveDecision(ctx, req, d)
	}
}
