package v1

import (
	"net/http"
	"sort"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/internal/audit"
	"github.com/Joker-Pro-Max/Pineapple/pkg/api"
	"github.com/Joker-Pro-Max/Pineapple/pkg/logger"
	"github.com/Joker-Pro-Max/Pineapple/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// AuditHandler 审计处理器
type AuditHandler struct {
	reader   *audit.Reader
	wsServer *audit.WebSocketServer
}

// NewAuditHandler 创建审计处理器实例，wsServer为nil时不提供实时推送
func NewAuditHandler(reader *audit.Reader, wsServer *audit.WebSocketServer) *AuditHandler {
	return &AuditHandler{
		reader:   reader,
		wsServer: wsServer,
	}
}

// Register 注册路由，仅超级管理员可访问
func (h *AuditHandler) Register(r *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	auditGroup := r.Group("/audit", authMiddleware.Required(), authMiddleware.RequireSuperAdmin())
	{
		auditGroup.GET("/logs", h.GetLogs)   // 查询日志
		auditGroup.GET("/verify", h.Verify)  // 校验哈希链
		auditGroup.GET("/stats", h.GetStats) // 统计信息
		if h.wsServer != nil {
			auditGroup.GET("/ws", h.HandleWebSocket) // 实时推送
		}
	}
}

// LogQueryRequest 日志查询请求
type LogQueryRequest struct {
	StartTime  *time.Time        `form:"start_time" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime    *time.Time        `form:"end_time" time_format:"2006-01-02T15:04:05Z07:00"`
	EventTypes []audit.EventType `form:"event_types"`
	UserID     string            `form:"user_id"`
	SystemCode string            `form:"system_code"`
	ClientIP   string            `form:"client_ip"`
	StatusCode int               `form:"status_code"`
	Outcome    string            `form:"outcome"`
}

// GetLogs 查询审计日志，最新的在前
func (h *AuditHandler) GetLogs(c *gin.Context) {
	var req LogQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	p := api.ParsePagination(c)

	logs, _, err := h.reader.ReadLogs(audit.QueryParams{
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		EventTypes: req.EventTypes,
		UserID:     req.UserID,
		SystemCode: req.SystemCode,
		ClientIP:   req.ClientIP,
		StatusCode: req.StatusCode,
		Outcome:    req.Outcome,
	})
	if err != nil {
		logger.Error("[AUDIT] failed to read logs: %v", err)
		api.Error(c, http.StatusInternalServerError, "读取审计日志失败", nil)
		return
	}

	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})

	total := len(logs)
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}
	api.Paginated(c, p, int64(total), logs[start:end])
}

// HandleWebSocket 订阅实时日志，system_code为空时订阅全部
func (h *AuditHandler) HandleWebSocket(c *gin.Context) {
	if err := h.wsServer.Upgrade(c.Writer, c.Request, c.Query("system_code")); err != nil {
		logger.Warn("[AUDIT] websocket upgrade failed: %v", err)
	}
}

// Verify 校验分区的哈希链，partition为系统码，默认校验全部分区
func (h *AuditHandler) Verify(c *gin.Context) {
	partitions := []string{c.Query("partition")}
	if partitions[0] == "" {
		all, err := h.reader.Partitions()
		if err != nil {
			api.Error(c, http.StatusInternalServerError, "读取审计分区失败", nil)
			return
		}
		partitions = all
	}

	results := make([]*audit.VerifyResult, 0, len(partitions))
	for _, partition := range partitions {
		result, err := h.reader.VerifyPartition(partition)
		if err != nil {
			logger.Error("[AUDIT] failed to verify %s: %v", partition, err)
			api.Error(c, http.StatusInternalServerError, "校验审计日志失败", nil)
			return
		}
		results = append(results, result)
	}
	api.Success(c, results)
}

// GetStats 分区统计信息
func (h *AuditHandler) GetStats(c *gin.Context) {
	partition := c.DefaultQuery("partition", audit.DefaultPartition)
	stats, err := h.reader.GetStats(partition)
	if err != nil {
		api.Error(c, http.StatusInternalServerError, "读取审计统计失败", nil)
		return
	}

	clients := 0
	if h.wsServer != nil {
		clients = h.wsServer.GetClientCount()
	}
	api.Success(c, gin.H{
		"partition":         partition,
		"stats":             stats,
		"connected_clients": clients,
	})
}
