package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType 令牌类型
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// TokenClaims JWT令牌的声明
type TokenClaims struct {
	jwt.RegisteredClaims
	TokenType   TokenType `json:"token_type"`
	UnifiedUUID string    `json:"uid,omitempty"`
	Roles       []string  `json:"roles"`
	Permissions []string  `json:"permissions"`
}

// ExpiresIn 距离过期的剩余时间
func (tc *TokenClaims) ExpiresIn(now time.Time) time.Duration {
	if tc.ExpiresAt == nil {
		return 0
	}
	return tc.ExpiresAt.Time.Sub(now)
}

// TokenPair 令牌对
type TokenPair struct {
	AccessToken          string        `json:"access"`
	RefreshToken         string        `json:"refresh"`
	AccessTokenExpireIn  time.Duration `json:"-"`
	RefreshTokenExpireIn time.Duration `json:"-"`
}

// RefreshTokenRequest 刷新令牌请求
type RefreshTokenRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// AccessTokenResponse 刷新令牌响应
type AccessTokenResponse struct {
	Access    string `json:"access"`
	ExpiresIn int64  `json:"expires_in"`
}
