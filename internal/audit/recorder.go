package audit

import (
	"context"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/pkg/logger"
)

// Recorder 把判定结果和账户事件写入审计日志并实时推送
type Recorder struct {
	writer  *Writer
	ws      *WebSocketServer
	locator Locator
}

// NewRecorder 创建审计记录器，ws和locator可以为nil
func NewRecorder(writer *Writer, ws *WebSocketServer, locator Locator) *Recorder {
	if locator == nil {
		locator = noopLocator{}
	}
	return &Recorder{writer: writer, ws: ws, locator: locator}
}

// ObserveDecision 记录授权判定，未声明权限要求的请求不记录
func (r *Recorder) ObserveDecision(ctx context.Context, req *model.AccessRequest, d *model.Decision) {
	if d.Outcome == model.OutcomeNotRequired {
		return
	}

	log := &AuditLog{
		Timestamp:     d.DecidedAt,
		EventType:     EventAccessDecision,
		SystemCode:    req.SystemCode,
		ClientIP:      req.ClientIP,
		RequestMethod: req.Method,
		RequestPath:   req.Path,
		UserAgent:     req.UserAgent,
		StatusCode:    d.Status,
		Outcome:       string(d.Outcome),
		Required:      req.RequiredPermissions,
		Logic:         string(req.Logic),
		Allowed:       d.Allowed,
		Description:   d.Message,
	}
	if d.Principal != nil {
		log.UserID = d.Principal.Subject()
	}
	r.Record(log)
}

// Record 写入一条日志，失败只记录错误
func (r *Recorder) Record(log *AuditLog) {
	if log.Location == "" && log.ClientIP != "" {
		log.Location = r.locator.Lookup(log.ClientIP)
	}
	if err := r.writer.Write(log); err != nil {
		logger.Error("[AUDIT] failed to write audit log: %v", err)
		return
	}
	if r.ws != nil {
		r.ws.Broadcast(log)
	}
}
