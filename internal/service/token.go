package service

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenCodec 令牌编解码，无状态，不负责注销
type TokenCodec interface {
	// Issue 为调用方签发访问令牌和刷新令牌
	Issue(identity model.Identity) (*model.TokenPair, error)
	// IssueAccess 只签发访问令牌
	IssueAccess(identity model.Identity) (string, time.Duration, error)
	// Refresh 用刷新令牌换取新的访问令牌
	Refresh(refreshToken string) (string, time.Duration, error)
	// Parse 校验签名、过期时间和令牌类型
	Parse(tokenString string, tokenType model.TokenType) (*model.TokenClaims, error)
}

// TokenSigner 签名算法与密钥
type TokenSigner struct {
	method    jwt.SigningMethod
	signKey   interface{}
	verifyKey interface{}
}

// NewHMACSigner HS256共享密钥
func NewHMACSigner(secret string) *TokenSigner {
	key := []byte(secret)
	return &TokenSigner{method: jwt.SigningMethodHS256, signKey: key, verifyKey: key}
}

// NewRSASigner RS256密钥对
func NewRSASigner(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey) *TokenSigner {
	return &TokenSigner{method: jwt.SigningMethodRS256, signKey: privateKey, verifyKey: publicKey}
}

// Algorithm 算法名
func (s *TokenSigner) Algorithm() string {
	return s.method.Alg()
}

// tokenCodec 令牌编解码实现
type tokenCodec struct {
	signer        *TokenSigner
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	now           func() time.Time
}

// NewTokenCodec 创建令牌编解码实例
func NewTokenCodec(signer *TokenSigner, accessExpiry, refreshExpiry time.Duration) TokenCodec {
	return &tokenCodec{
		signer:        signer,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		now:           time.Now,
	}
}

// sign 填充时间与jti后签名
func (c *tokenCodec) sign(claims *model.TokenClaims, expiry time.Duration) (string, error) {
	now := c.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(expiry))
	claims.ID = uuid.NewString()

	token := jwt.NewWithClaims(c.signer.method, claims)
	return token.SignedString(c.signer.signKey)
}

// identityClaims 由调用方生成令牌声明
func identityClaims(identity model.Identity, tokenType model.TokenType) *model.TokenClaims {
	return &model.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: identity.Subject()},
		TokenType:        tokenType,
		UnifiedUUID:      identity.UnifiedID(),
		Roles:            nonNil(identity.RoleNames()),
		Permissions:      nonNil(identity.EffectivePermissions()),
	}
}

// Issue 签发令牌对，两个令牌都携带角色和有效权限
func (c *tokenCodec) Issue(identity model.Identity) (*model.TokenPair, error) {
	accessToken, err := c.sign(identityClaims(identity, model.AccessToken), c.accessExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := c.sign(identityClaims(identity, model.RefreshToken), c.refreshExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:          accessToken,
		RefreshToken:         refreshToken,
		AccessTokenExpireIn:  c.accessExpiry,
		RefreshTokenExpireIn: c.refreshExpiry,
	}, nil
}

// IssueAccess 按调用方当前的角色和权限签发访问令牌
func (c *tokenCodec) IssueAccess(identity model.Identity) (string, time.Duration, error) {
	accessToken, err := c.sign(identityClaims(identity, model.AccessToken), c.accessExpiry)
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate access token: %w", err)
	}
	return accessToken, c.accessExpiry, nil
}

// Refresh 新访问令牌沿用刷新令牌中的身份声明
func (c *tokenCodec) Refresh(refreshToken string) (string, time.Duration, error) {
	claims, err := c.Parse(refreshToken, model.RefreshToken)
	if err != nil {
		return "", 0, err
	}

	access := &model.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: claims.Subject},
		TokenType:        model.AccessToken,
		UnifiedUUID:      claims.UnifiedUUID,
		Roles:            nonNil(claims.Roles),
		Permissions:      nonNil(claims.Permissions),
	}
	accessToken, err := c.sign(access, c.accessExpiry)
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate access token: %w", err)
	}
	return accessToken, c.accessExpiry, nil
}

// Parse 校验并解析令牌
func (c *tokenCodec) Parse(tokenString string, tokenType model.TokenType) (*model.TokenClaims, error) {
	claims := &model.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return c.signer.verifyKey, nil
		},
		jwt.WithValidMethods([]string{c.signer.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.TokenType != tokenType || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
