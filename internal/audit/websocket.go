package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/pkg/logger"

	"github.com/gorilla/websocket"
)

// WebSocketConfig WebSocket配置
type WebSocketConfig struct {
	PingInterval   time.Duration // 心跳间隔
	WriteWait      time.Duration // 写超时
	ReadWait       time.Duration // 读超时
	MaxMessageSize int64         // 客户端消息的最大长度
	BufferSize     int           // 待广播队列长度
}

// DefaultWebSocketConfig 默认配置
func DefaultWebSocketConfig() *WebSocketConfig {
	return &WebSocketConfig{
		PingInterval:   30 * time.Second,
		WriteWait:      10 * time.Second,
		ReadWait:       60 * time.Second,
		MaxMessageSize: 1024,
		BufferSize:     256,
	}
}

// WebSocketServer 审计日志实时推送
type WebSocketServer struct {
	mu        sync.RWMutex
	clients   map[*websocket.Conn]*ClientInfo
	broadcast chan *AuditLog
	config    *WebSocketConfig
	upgrader  websocket.Upgrader
}

// ClientInfo 客户端信息，SystemCode为空表示订阅全部
type ClientInfo struct {
	SystemCode string
	Conn       *websocket.Conn
	writeMu    sync.Mutex
}

// NewWebSocketServer 创建新的WebSocket服务器
func NewWebSocketServer(config *WebSocketConfig) *WebSocketServer {
	if config == nil {
		config = DefaultWebSocketConfig()
	}
	defaults := DefaultWebSocketConfig()
	if config.PingInterval <= 0 {
		config.PingInterval = defaults.PingInterval
	}
	if config.WriteWait <= 0 {
		config.WriteWait = defaults.WriteWait
	}
	if config.ReadWait <= 0 {
		config.ReadWait = defaults.ReadWait
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = defaults.MaxMessageSize
	}
	if config.BufferSize <= 0 {
		config.BufferSize = defaults.BufferSize
	}
	return &WebSocketServer{
		clients:   make(map[*websocket.Conn]*ClientInfo),
		broadcast: make(chan *AuditLog, config.BufferSize),
		config:    config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Start 消费广播队列直到ctx结束
func (s *WebSocketServer) Start(ctx context.Context) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case log := <-s.broadcast:
			s.broadcastLog(log)
		case <-ticker.C:
			s.ping()
		}
	}
}

// Upgrade 升级HTTP连接并注册为订阅者
func (s *WebSocketServer) Upgrade(w http.ResponseWriter, r *http.Request, systemCode string) error {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	s.AddClient(conn, systemCode)
	return nil
}

// AddClient 添加新的WebSocket客户端
func (s *WebSocketServer) AddClient(conn *websocket.Conn, systemCode string) {
	s.mu.Lock()
	s.clients[conn] = &ClientInfo{SystemCode: systemCode, Conn: conn}
	s.mu.Unlock()

	go s.readPump(conn)
}

// RemoveClient 移除WebSocket客户端
func (s *WebSocketServer) RemoveClient(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[conn]; ok {
		delete(s.clients, conn)
		conn.Close()
	}
}

// Broadcast 投递日志，队列满时丢弃，不阻塞请求
func (s *WebSocketServer) Broadcast(log *AuditLog) {
	select {
	case s.broadcast <- log:
	default:
		logger.Warn("[AUDIT] websocket queue full, drop log %s", log.ID)
	}
}

// broadcastLog 向订阅了该系统的客户端推送
func (s *WebSocketServer) broadcastLog(log *AuditLog) {
	data, err := json.Marshal(WebSocketMessage{Type: "audit_log", Payload: log})
	if err != nil {
		logger.Error("[AUDIT] failed to marshal websocket message: %v", err)
		return
	}

	var failed []*websocket.Conn
	s.mu.RLock()
	for conn, info := range s.clients {
		if info.SystemCode != "" && info.SystemCode != log.SystemCode {
			continue
		}
		if err := s.write(info, websocket.TextMessage, data); err != nil {
			logger.Warn("[AUDIT] failed to write to websocket: %v", err)
			failed = append(failed, conn)
		}
	}
	s.mu.RUnlock()

	for _, conn := range failed {
		s.RemoveClient(conn)
	}
}

// ping 心跳
func (s *WebSocketServer) ping() {
	var failed []*websocket.Conn
	s.mu.RLock()
	for conn, info := range s.clients {
		if err := s.write(info, websocket.PingMessage, nil); err != nil {
			failed = append(failed, conn)
		}
	}
	s.mu.RUnlock()

	for _, conn := range failed {
		s.RemoveClient(conn)
	}
}

func (s *WebSocketServer) write(info *ClientInfo, messageType int, data []byte) error {
	info.writeMu.Lock()
	defer info.writeMu.Unlock()
	_ = info.Conn.SetWriteDeadline(time.Now().Add(s.config.WriteWait))
	return info.Conn.WriteMessage(messageType, data)
}

// readPump 读取客户端消息，只用于检测断开和处理pong
func (s *WebSocketServer) readPump(conn *websocket.Conn) {
	defer s.RemoveClient(conn)

	conn.SetReadLimit(s.config.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(s.config.ReadWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.config.ReadWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("[AUDIT] websocket error: %v", err)
			}
			return
		}
	}
}

// closeAll 关闭所有连接
func (s *WebSocketServer) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		conn.Close()
		delete(s.clients, conn)
	}
}

// GetClientCount 获取当前连接的客户端数量
func (s *WebSocketServer) GetClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
