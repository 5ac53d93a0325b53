package middleware

import (
	"strings"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"

	"github.com/gin-gonic/gin"
)

const (
	// BearerSchema Bearer认证方案
	BearerSchema = "Bearer "
	// CookieAccessToken Cookie中访问令牌的键
	CookieAccessToken = "access_token"

	// ContextKeyPrincipal 上下文中调用方快照的键
	ContextKeyPrincipal = "principal"
	// ContextKeyClaims 上下文中令牌声明的键
	ContextKeyClaims = "claims"
	// ContextKeyAuditSubject 未登录接口（登录、注册）由处理器写入的用户uuid
	ContextKeyAuditSubject = "audit_subject"
)

// ExtractToken 依次从Authorization头和Cookie中获取访问令牌
func ExtractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if len(auth) > len(BearerSchema) && strings.EqualFold(auth[:len(BearerSchema)], BearerSchema) {
		return strings.TrimSpace(auth[len(BearerSchema):])
	}
	if cookie, err := c.Cookie(CookieAccessToken); err == nil {
		return cookie
	}
	return ""
}

// GetPrincipal 从上下文中获取调用方
func GetPrincipal(c *gin.Context) *model.Principal {
	if v, exists := c.Get(ContextKeyPrincipal); exists {
		if p, ok := v.(*model.Principal); ok {
			return p
		}
	}
	return nil
}

// MustGetPrincipal 从上下文中获取调用方，不存在则panic
func MustGetPrincipal(c *gin.Context) *model.Principal {
	p := GetPrincipal(c)
	if p == nil {
		panic("principal not found in context")
	}
	return p
}

// GetClaims 从上下文中获取令牌声明
func GetClaims(c *gin.Context) *model.TokenClaims {
	if v, exists := c.Get(ContextKeyClaims); exists {
		if claims, ok := v.(*model.TokenClaims); ok {
			return claims
		}
	}
	return nil
}

// SetAuditSubject 记录本次请求涉及的用户
func SetAuditSubject(c *gin.Context, userUUID string) {
	c.Set(ContextKeyAuditSubject, userUUID)
}
