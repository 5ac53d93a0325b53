package audit

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// EventType 审计事件类型
type EventType string

const (
	// 权限判定事件
	EventAccessDecision EventType = "access_decision"

	// 认证相关事件
	EventRegister     EventType = "register"
	EventLogin        EventType = "login"
	EventWechatLogin  EventType = "wechat_login"
	EventLogout       EventType = "logout"
	EventTokenRefresh EventType = "token_refresh"

	// 管理事件
	EventUserUpdate       EventType = "user_update"
	EventUserGrant        EventType = "user_grant"
	EventSystemChange     EventType = "system_change"
	EventRoleChange       EventType = "role_change"
	EventPermissionChange EventType = "permission_change"
	EventFileChange       EventType = "file_change"
)

// DefaultPartition 未携带系统码的日志写入的分区
const DefaultPartition = "default"

// AuditLog 审计日志结构
type AuditLog struct {
	ID         string    `json:"id"`          // 日志ID
	Timestamp  time.Time `json:"timestamp"`   // 时间戳
	EventType  EventType `json:"event_type"`  // 事件类型
	UserID     string    `json:"user_id"`     // 用户uuid
	SystemCode string    `json:"system_code"` // 系统码，同时作为分区
	ClientIP   string    `json:"client_ip"`   // 客户端IP
	Location   string    `json:"location"`    // IP归属地

	// 请求信息
	RequestMethod string `json:"request_method"`
	RequestPath   string `json:"request_path"`
	UserAgent     string `json:"user_agent"`

	// 判定结果
	StatusCode  int      `json:"status_code"`
	Outcome     string   `json:"outcome,omitempty"`
	Required    []string `json:"required,omitempty"`
	Logic       string   `json:"logic,omitempty"`
	Allowed     bool     `json:"allowed"`
	Description string   `json:"description,omitempty"`

	Details map[string]interface{} `json:"details,omitempty"`

	// 哈希链
	PrevHash string `json:"prev_hash"`
	Hash     string `json:"hash"`
}

// Partition 日志所在分区
func (l *AuditLog) Partition() string {
	if l.SystemCode == "" {
		return DefaultPartition
	}
	return sanitizePartition(l.SystemCode)
}

// String 返回日志的JSON字符串表示
func (l *AuditLog) String() string {
	data, _ := json.Marshal(l)
	return string(data)
}

// QueryParams 审计日志查询参数
type QueryParams struct {
	StartTime  *time.Time  `json:"start_time"`
	EndTime    *time.Time  `json:"end_time"`
	EventTypes []EventType `json:"event_types"`
	UserID     string      `json:"user_id"`
	SystemCode string      `json:"system_code"`
	ClientIP   string      `json:"client_ip"`
	StatusCode int         `json:"status_code"`
	Outcome    string      `json:"outcome"`
	Limit      int         `json:"limit"`
	Offset     int         `json:"offset"`
}

// LogIndex 分区索引
type LogIndex struct {
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`
	Files     []LogFileInfo     `json:"files"`
	Stats     map[EventType]int `json:"stats"`
	Outcomes  map[string]int    `json:"outcomes"`
	TotalLogs int               `json:"total_logs"`
}

// LogFileInfo 日志文件信息
type LogFileInfo struct {
	Path      string            `json:"path"`       // 相对路径
	StartTime time.Time         `json:"start_time"` // 文件中最早的日志时间
	EndTime   time.Time         `json:"end_time"`   // 文件中最晚的日志时间
	Size      int64             `json:"size"`
	Events    map[EventType]int `json:"events"`
}

// PartitionStats 分区统计
type PartitionStats struct {
	TotalLogs  int               `json:"total_logs"`
	EventStats map[EventType]int `json:"event_stats"`
	Outcomes   map[string]int    `json:"outcomes"`
	Size       int64             `json:"size"`
}

// LogPath 日志路径 <partition>/<yyyy>/<mm>/<dd>/audit-<ts>.log
type LogPath struct {
	Partition string
	Year      int
	Month     int
	Day       int
	Name      string
}

// NewLogPath 创建日志路径
func NewLogPath(partition string, t time.Time) LogPath {
	return LogPath{
		Partition: partition,
		Year:      t.Year(),
		Month:     int(t.Month()),
		Day:       t.Day(),
		Name:      fmt.Sprintf("audit-%s.log", t.Format("20060102-150405.000000")),
	}
}

// String 返回完整的相对路径
func (p LogPath) String() string {
	if p.Partition == "" {
		p.Partition = DefaultPartition
	}
	return filepath.Join(
		p.Partition,
		fmt.Sprintf("%04d", p.Year),
		fmt.Sprintf("%02d", p.Month),
		fmt.Sprintf("%02d", p.Day),
		p.Name,
	)
}

// Date 路径对应的日期（本地时区零点）
func (p LogPath) Date() time.Time {
	return time.Date(p.Year, time.Month(p.Month), p.Day, 0, 0, 0, 0, time.Local)
}

// ParseLogPath 从相对路径解析LogPath
func ParseLogPath(path string) (LogPath, error) {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) != 5 {
		return LogPath{}, fmt.Errorf("invalid log path format: %s", path)
	}

	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return LogPath{}, fmt.Errorf("invalid year format: %s", parts[1])
	}
	month, err := strconv.Atoi(parts[2])
	if err != nil {
		return LogPath{}, fmt.Errorf("invalid month format: %s", parts[2])
	}
	day, err := strconv.Atoi(parts[3])
	if err != nil {
		return LogPath{}, fmt.Errorf("invalid day format: %s", parts[3])
	}

	return LogPath{
		Partition: parts[0],
		Year:      year,
		Month:     month,
		Day:       day,
		Name:      parts[4],
	}, nil
}

// sanitizePartition 系统码作为目录名时去掉路径分隔符
func sanitizePartition(code string) string {
	code = strings.TrimSpace(code)
	r := strings.NewReplacer("/", "_", "\\", "_", "..", "_")
	code = r.Replace(code)
	if code == "" || code == "." {
		return DefaultPartition
	}
	return code
}

// WebSocketMessage WebSocket消息结构
type WebSocketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
