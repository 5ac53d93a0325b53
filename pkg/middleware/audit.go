package middleware

import (
	"net/http"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/internal/audit"
	"github.com/Joker-Pro-Max/Pineapple/internal/model"

	"github.com/gin-gonic/gin"
)

// EventTypeStrategy 事件类型策略接口
type EventTypeStrategy interface {
	DetermineEventType(route string, method string) audit.EventType
}

// RouteMethodStrategy 按gin路由模板和方法确定事件类型
type RouteMethodStrategy struct {
	eventTypeMap map[string]audit.EventType
}

// NewRouteMethodStrategy 创建策略实例并注册默认映射
func NewRouteMethodStrategy() *RouteMethodStrategy {
	s := &RouteMethodStrategy{eventTypeMap: make(map[string]audit.EventType)}

	const account = "/api/v1/account"
	s.RegisterEventType(account+"/register", http.MethodPost, audit.EventRegister)
	s.RegisterEventType(account+"/login", http.MethodPost, audit.EventLogin)
	s.RegisterEventType(account+"/wechat", http.MethodPost, audit.EventWechatLogin)
	s.RegisterEventType(account+"/logout", http.MethodPost, audit.EventLogout)
	s.RegisterEventType(account+"/refresh", http.MethodPost, audit.EventTokenRefresh)

	s.RegisterEventType(account+"/userinfo/:id/update", http.MethodPut, audit.EventUserUpdate)
	s.RegisterEventType(account+"/user/:id/roles", http.MethodPut, audit.EventUserGrant)
	s.RegisterEventType(account+"/user/:id/systems", http.MethodPut, audit.EventUserGrant)
	s.RegisterEventType(account+"/user/:id/permissions", http.MethodPut, audit.EventUserGrant)

	for prefix, event := range map[string]audit.EventType{
		account + "/systems":    audit.EventSystemChange,
		account + "/role":       audit.EventRoleChange,
		account + "/permission": audit.EventPermissionChange,
	} {
		s.RegisterEventType(prefix+"/create", http.MethodPost, event)
		s.RegisterEventType(prefix+"/:id", http.MethodPut, event)
		s.RegisterEventType(prefix+"/:id/del", http.MethodDelete, event)
		s.RegisterEventType(prefix+"/:id/cancel-del", http.MethodDelete, event)
	}
	s.RegisterEventType(account+"/role/:id/permissions", http.MethodPut, audit.EventRoleChange)

	const files = "/api/v1/files"
	s.RegisterEventType(files+"/upload", http.MethodPost, audit.EventFileChange)
	s.RegisterEventType(files+"/:id/delete", http.MethodDelete, audit.EventFileChange)
	s.RegisterEventType(files+"/:id/cancel-del", http.MethodDelete, audit.EventFileChange)
	s.RegisterEventType(files+"/category/create", http.MethodPost, audit.EventFileChange)
	s.RegisterEventType(files+"/category/:id/del", http.MethodDelete, audit.EventFileChange)
	s.RegisterEventType(files+"/category/:id/cancel-del", http.MethodDelete, audit.EventFileChange)

	return s
}

// RegisterEventType 注册事件类型
func (s *RouteMethodStrategy) RegisterEventType(route string, method string, eventType audit.EventType) {
	s.eventTypeMap[route+":"+method] = eventType
}

// DetermineEventType 确定事件类型，未注册的路由返回空
func (s *RouteMethodStrategy) DetermineEventType(route string, method string) audit.EventType {
	return s.eventTypeMap[route+":"+method]
}

// AuditMiddleware 记录账户和管理类请求
type AuditMiddleware struct {
	recorder      *audit.Recorder
	eventStrategy EventTypeStrategy
}

// NewAuditMiddleware 创建新的审计中间件
func NewAuditMiddleware(recorder *audit.Recorder) *AuditMiddleware {
	return &AuditMiddleware{
		recorder:      recorder,
		eventStrategy: NewRouteMethodStrategy(),
	}
}

// Handle 处理请求，请求体不落日志
func (m *AuditMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()

		eventType := m.eventStrategy.DetermineEventType(c.FullPath(), c.Request.Method)
		if eventType == "" {
			return
		}

		var userID string
		if p := GetPrincipal(c); p != nil {
			userID = p.Subject()
		} else {
			userID = c.GetString(ContextKeyAuditSubject)
		}

		status := c.Writer.Status()
		m.recorder.Record(&audit.AuditLog{
			Timestamp:     startTime,
			EventType:     eventType,
			UserID:        userID,
			SystemCode:    c.GetHeader(model.HeaderSystemCode),
			ClientIP:      c.ClientIP(),
			RequestMethod: c.Request.Method,
			RequestPath:   c.Request.URL.Path,
			UserAgent:     c.Request.UserAgent(),
			StatusCode:    status,
			Allowed:       status < http.StatusBadRequest,
			Details: map[string]interface{}{
				"duration_ms": time.Since(startTime).Milliseconds(),
				"query":       c.Request.URL.RawQuery,
			},
		})
	}
}
