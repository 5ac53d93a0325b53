package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"
)

// Authenticator 由访问令牌得到调用方
type Authenticator interface {
	// Authenticate 返回调用方快照和令牌声明
	Authenticate(ctx context.Context, bearer string) (*model.Principal, *model.TokenClaims, error)
}

// authenticator 令牌 -> 注销列表 -> 身份库
type authenticator struct {
	codec    TokenCodec
	denylist TokenDenylist
	resolver PermissionResolver
}

// NewAuthenticator 创建认证器，denylist可以为nil
func NewAuthenticator(codec TokenCodec, denylist TokenDenylist, resolver PermissionResolver) Authenticator {
	return &authenticator{
		codec:    codec,
		denylist: denylist,
		resolver: resolver,
	}
}

// Authenticate 认证访问令牌
func (a *authenticator) Authenticate(ctx context.Context, bearer string) (*model.Principal, *model.TokenClaims, error) {
	if bearer == "" {
		return nil, nil, ErrUnauthenticated
	}

	claims, err := a.codec.Parse(bearer, model.AccessToken)
	if err != nil {
		return nil, nil, err
	}

	if a.denylist != nil {
		revoked, err := a.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrResolverFailure, err)
		}
		if revoked {
			return nil, nil, ErrTokenRevoked
		}
	}

	principal, err := a.resolver.Resolve(ctx, claims.Subject)
	if err != nil {
		return nil, nil, err
	}
	return principal, claims, nil
}

// IsTokenError 令牌本身不可用（无效、过期或已注销）
func IsTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrTokenExpired) || errors.Is(err, ErrTokenRevoked)
}
