package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/pkg/redis"
)

const revokedTokenPrefix = "revoked_token:"

// TokenDenylist 已注销令牌的jti列表
type TokenDenylist interface {
	// Revoke 注销令牌，ttl为令牌剩余有效期
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	// IsRevoked 是否已注销
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// redisDenylist Redis实现，键随令牌过期自动清理
type redisDenylist struct {
	redis *redis.Client
}

// NewTokenDenylist 创建注销列表
func NewTokenDenylist(redisClient *redis.Client) TokenDenylist {
	return &redisDenylist{redis: redisClient}
}

// Revoke 注销令牌
func (d *redisDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return ErrInvalidToken
	}
	// 已经过期的令牌无需记录
	if ttl <= 0 {
		return nil
	}
	if err := d.redis.SetWithTTL(ctx, revokedTokenPrefix+jti, 1, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked 是否已注销
func (d *redisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	revoked, err := d.redis.Exists(ctx, revokedTokenPrefix+jti)
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return revoked, nil
}
