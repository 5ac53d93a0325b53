package router

import (
	"net/http"

	v1 "github.com/Joker-Pro-Max/Pineapple/api/v1"
	"github.com/Joker-Pro-Max/Pineapple/pkg/metrics"
	"github.com/Joker-Pro-Max/Pineapple/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers 所有v1处理器
type Handlers struct {
	Account    *v1.AccountHandler
	User       *v1.UserHandler
	System     *v1.SystemHandler
	Role       *v1.RoleHandler
	Permission *v1.PermissionHandler
	File       *v1.FileHandler
	Audit      *v1.AuditHandler
}

// Router 路由管理器
type Router struct {
	engine               *gin.Engine
	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware
	auditMiddleware      *middleware.AuditMiddleware
	metrics              *metrics.Metrics
	handlers             Handlers
}

// NewRouter 创建路由管理器实例，auditMiddleware和metrics可以为nil
func NewRouter(
	engine *gin.Engine,
	authMiddleware *middleware.AuthMiddleware,
	permissionMiddleware *middleware.PermissionMiddleware,
	auditMiddleware *middleware.AuditMiddleware,
	m *metrics.Metrics,
	handlers Handlers,
) *Router {
	return &Router{
		engine:               engine,
		authMiddleware:       authMiddleware,
		permissionMiddleware: permissionMiddleware,
		auditMiddleware:      auditMiddleware,
		metrics:              m,
		handlers:             handlers,
	}
}

// RegisterRoutes 注册所有路由
func (r *Router) RegisterRoutes() {
	if r.metrics != nil {
		r.engine.Use(r.metrics.HandlerFunc())
		r.engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	}

	// 健康检查
	r.engine.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := r.engine.Group("/api/v1")
	if r.auditMiddleware != nil {
		api.Use(r.auditMiddleware.Handle())
	}
	// 按请求头声明的系统和权限码校验
	api.Use(r.permissionMiddleware.Handle())

	account := api.Group("/account")
	{
		r.handlers.Account.Register(account, r.authMiddleware)
		r.handlers.User.Register(account, r.authMiddleware)
		r.handlers.System.Register(account, r.authMiddleware)
		r.handlers.Role.Register(account, r.authMiddleware)
		r.handlers.Permission.Register(account, r.authMiddleware)
	}

	if r.handlers.File != nil {
		r.handlers.File.Register(api, r.authMiddleware)
	}
	if r.handlers.Audit != nil {
		r.handlers.Audit.Register(api, r.authMiddleware)
	}
}
