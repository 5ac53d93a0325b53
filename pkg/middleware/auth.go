package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/internal/service"
	"github.com/Joker-Pro-Max/Pineapple/pkg/api"
	"github.com/Joker-Pro-Max/Pineapple/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 认证中间件
type AuthMiddleware struct {
	authenticator service.Authenticator
}

// NewAuthMiddleware 创建认证中间件实例
func NewAuthMiddleware(authenticator service.Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

// Required 要求有效的访问令牌，调用方和令牌声明写入上下文
func (m *AuthMiddleware) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 权限校验已认证过的请求直接复用
		if claims := GetClaims(c); claims != nil && GetPrincipal(c) != nil {
			setExpiresIn(c, claims)
			c.Next()
			return
		}

		principal, claims, err := m.authenticator.Authenticate(c.Request.Context(), ExtractToken(c))
		if err != nil {
			logger.Debug("[TOKEN] authentication failed %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			switch {
			case service.IsTokenError(err):
				api.Abort(c, http.StatusUnauthorized, "Token无效或已过期")
			case errors.Is(err, service.ErrResolverFailure):
				api.Abort(c, http.StatusServiceUnavailable, "认证服务暂不可用")
			default:
				api.Abort(c, http.StatusUnauthorized, "未认证或用户不存在")
			}
			return
		}

		setExpiresIn(c, claims)
		c.Set(ContextKeyPrincipal, principal)
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// setExpiresIn 返回访问令牌的剩余有效期
func setExpiresIn(c *gin.Context, claims *model.TokenClaims) {
	if remaining := claims.ExpiresIn(time.Now()); remaining > 0 {
		c.Header("X-Token-Expires-In", remaining.Round(time.Second).String())
	}
}

// RequireAdmin 需要管理员（admin或superadmin角色，或超级用户），需放在Required之后
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if principal == nil {
			api.Abort(c, http.StatusUnauthorized, "未认证或用户不存在")
			return
		}
		if !principal.IsAdmin() {
			api.Abort(c, http.StatusForbidden, "需要管理员权限")
			return
		}
		c.Next()
	}
}

// RequireSuperAdmin 需要超级管理员，需放在Required之后
func (m *AuthMiddleware) RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if principal == nil {
			api.Abort(c, http.StatusUnauthorized, "未认证或用户不存在")
			return
		}
		if !principal.IsSuperAdmin() {
			api.Abort(c, http.StatusForbidden, "需要超级管理员权限")
			return
		}
		c.Next()
	}
}
