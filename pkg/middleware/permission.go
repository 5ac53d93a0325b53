package middleware

import (
	"strings"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/internal/service"
	"github.com/Joker-Pro-Max/Pineapple/pkg/api"

	"github.com/gin-gonic/gin"
)

// PermissionMiddleware 按 X-System-Code / X-Required-Permission / X-Permission-Logic 做权限校验
type PermissionMiddleware struct {
	gate service.AuthorizationGate
}

// NewPermissionMiddleware 创建权限校验中间件
func NewPermissionMiddleware(gate service.AuthorizationGate) *PermissionMiddleware {
	return &PermissionMiddleware{gate: gate}
}

// NewAccessRequest 从请求中读取判定所需的信息
func NewAccessRequest(c *gin.Context) *model.AccessRequest {
	return &model.AccessRequest{
		SystemCode:          c.GetHeader(model.HeaderSystemCode),
		RequiredPermissions: model.ParseRequiredPermissions(strings.Join(c.Request.Header.Values(model.HeaderRequiredPermission), ",")),
		Logic:               model.ParsePermissionLogic(c.GetHeader(model.HeaderPermissionLogic)),
		BearerToken:         ExtractToken(c),
		Method:              c.Request.Method,
		Path:                c.Request.URL.Path,
		ClientIP:            c.ClientIP(),
		UserAgent:           c.Request.UserAgent(),
	}
}

// Handle 拒绝时返回 {code, message}，放行时把调用方写入上下文
func (m *PermissionMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := m.gate.Check(c.Request.Context(), NewAccessRequest(c))
		if !decision.Allowed {
			api.Abort(c, decision.Status, decision.Message)
			return
		}
		if decision.Principal != nil {
			c.Set(ContextKeyPrincipal, decision.Principal)
		}
		if decision.Claims != nil {
			c.Set(ContextKeyClaims, decision.Claims)
		}
		c.Next()
	}
}
