package boot

import (
	v1 "github.com/Joker-Pro-Max/Pineapple/api/v1"
	"github.com/Joker-Pro-Max/Pineapple/pkg/metrics"
	"github.com/Joker-Pro-Max/Pineapple/pkg/middleware"
	"github.com/Joker-Pro-Max/Pineapple/pkg/router"

	"github.com/gin-gonic/gin"
)

// InitHandlers 初始化所有HTTP处理器
func InitHandlers(services *Services, auditComponents *AuditComponents) router.Handlers {
	handlers := router.Handlers{
		Account:    v1.NewAccountHandler(services.AuthService),
		User:       v1.NewUserHandler(services.UserService),
		System:     v1.NewSystemHandler(services.SystemService),
		Role:       v1.NewRoleHandler(services.RoleService),
		Permission: v1.NewPermissionHandler(services.PermissionService),
	}
	if services.FileService != nil {
		handlers.File = v1.NewFileHandler(services.FileService, services.CategoryService)
	}
	if auditComponents != nil {
		handlers.Audit = v1.NewAuditHandler(auditComponents.Reader, auditComponents.WebSocketServer)
	}
	return handlers
}

// InitRouter 初始化中间件和路由
func InitRouter(
	engine *gin.Engine,
	services *Services,
	handlers router.Handlers,
	auditComponents *AuditComponents,
	m *metrics.Metrics,
) *router.Router {
	var auditMiddleware *middleware.AuditMiddleware
	if auditComponents != nil {
		auditMiddleware = middleware.NewAuditMiddleware(auditComponents.Recorder)
	}

	r := router.NewRouter(
		engine,
		middleware.NewAuthMiddleware(services.Authenticator),
		middleware.NewPermissionMiddleware(services.Gate),
		auditMiddleware,
		m,
		handlers,
	)
	r.RegisterRoutes()
	return r
}
