package boot

import (
	"time"

	"github.com/Joker-Pro-Max/Pineapple/internal/audit"
	"github.com/Joker-Pro-Max/Pineapple/pkg/config"
)

// AuditComponents 包含审计相关组件
type AuditComponents struct {
	Writer          *audit.Writer
	Reader          *audit.Reader
	WebSocketServer *audit.WebSocketServer
	Recorder        *audit.Recorder
}

// InitAudit 初始化审计相关组件，审计关闭时返回nil
func InitAudit(cfg *config.AuditConfig) (*AuditComponents, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	// 初始化审计日志写入器
	writer, err := audit.NewWriter(audit.WriterConfig{
		BaseDir:    cfg.LogDir,
		RotateSize: cfg.RotationSize,
	})
	if err != nil {
		return nil, err
	}

	// 初始化WebSocket服务器
	wsServer := audit.NewWebSocketServer(&audit.WebSocketConfig{
		PingInterval:   time.Duration(cfg.WebSocket.PingInterval) * time.Second,
		WriteWait:      time.Duration(cfg.WebSocket.WriteWait) * time.Second,
		ReadWait:       time.Duration(cfg.WebSocket.ReadWait) * time.Second,
		MaxMessageSize: int64(cfg.WebSocket.MaxMessageSize),
	})

	return &AuditComponents{
		Writer:          writer,
		Reader:          audit.NewReader(cfg.LogDir),
		WebSocketServer: wsServer,
		Recorder:        audit.NewRecorder(writer, wsServer, audit.NewLocator(cfg.IPDBPath)),
	}, nil
}

// Close 关闭日志文件
func (a *AuditComponents) Close() error {
	if a == nil {
		return nil
	}
	return a.Writer.Close()
}
