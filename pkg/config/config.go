package config

import (
	"fmt"
	"strings"

	"github.com/Joker-Pro-Max/Pineapple/pkg/database"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 PINEAPPLE_JWT_SECRET
const EnvPrefix = "PINEAPPLE"

// Config 应用配置结构
type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Database database.Config `mapstructure:"database"`
	MongoDB  MongoDBConfig   `mapstructure:"mongodb"`
	Redis    RedisConfig     `mapstructure:"redis"`
	JWT      JWTConfig       `mapstructure:"jwt"`
	Wechat   WechatConfig    `mapstructure:"wechat"`
	Audit    AuditConfig     `mapstructure:"audit"`
	Upload   UploadConfig    `mapstructure:"upload"`
	Log      LogConfig       `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// MongoDBConfig MongoDB配置
type MongoDBConfig struct {
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
	Bucket      string `mapstructure:"bucket"` // GridFS bucket名称
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret             string `mapstructure:"secret"`
	Algorithm          string `mapstructure:"algorithm"`            // HS256 或 RS256
	PrivateKeyPath     string `mapstructure:"private_key_path"`     // RS256私钥路径
	PublicKeyPath      string `mapstructure:"public_key_path"`      // RS256公钥路径
	AccessTokenExpire  int    `mapstructure:"access_token_expire"`  // 访问令牌有效期(分钟)
	RefreshTokenExpire int    `mapstructure:"refresh_token_expire"` // 刷新令牌有效期(分钟)
}

// WechatConfig 微信小程序配置
type WechatConfig struct {
	AppID     string `mapstructure:"app_id"`
	AppSecret string `mapstructure:"app_secret"`
	BaseURL   string `mapstructure:"base_url"`
	Timeout   int    `mapstructure:"timeout"` // 请求超时(秒)
}

// AuditConfig 审计配置
type AuditConfig struct {
	Enabled      bool            `mapstructure:"enabled"`
	LogDir       string          `mapstructure:"log_dir"`       // 日志目录
	RotationSize int64           `mapstructure:"rotation_size"` // 日志文件轮转大小
	IPDBPath     string          `mapstructure:"ip_db_path"`    // ip2region数据库路径
	WebSocket    WebSocketConfig `mapstructure:"websocket"`     // WebSocket配置
}

// WebSocketConfig WebSocket配置
type WebSocketConfig struct {
	PingInterval   int `mapstructure:"ping_interval"`    // 心跳间隔(秒)
	WriteWait      int `mapstructure:"write_wait"`       // 写超时(秒)
	ReadWait       int `mapstructure:"read_wait"`        // 读超时(秒)
	MaxMessageSize int `mapstructure:"max_message_size"` // 最大消息大小(字节)
}

// UploadConfig 上传配置
type UploadConfig struct {
	MaxSize int64 `mapstructure:"max_size"` // 单个文件最大字节数
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string `mapstructure:"level"`    // debug/info/warn/error
	SQLMode string `mapstructure:"sql_mode"` // silent/error/warn/info
}

// setDefaults 默认配置
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("mongodb.database", "pineapple")
	v.SetDefault("mongodb.max_pool_size", 50)
	v.SetDefault("mongodb.bucket", "stored_files")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("jwt.algorithm", "HS256")
	v.SetDefault("jwt.access_token_expire", 60)
	v.SetDefault("jwt.refresh_token_expire", 7*24*60)
	v.SetDefault("wechat.base_url", "https://api.weixin.qq.com")
	v.SetDefault("wechat.timeout", 5)
	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.log_dir", "logs/audit")
	v.SetDefault("audit.rotation_size", 100*1024*1024)
	v.SetDefault("audit.websocket.ping_interval", 30)
	v.SetDefault("audit.websocket.write_wait", 10)
	v.SetDefault("audit.websocket.read_wait", 60)
	v.SetDefault("audit.websocket.max_message_size", 4096)
	v.SetDefault("upload.max_size", 10*1024*1024)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.sql_mode", "warn")

	// 只在环境变量中提供的键也需要登记，否则Unmarshal读不到
	for _, key := range []string{
		"database.host", "database.port", "database.user", "database.password", "database.dbname",
		"mongodb.uri", "redis.host", "redis.password",
		"jwt.secret", "jwt.private_key_path", "jwt.public_key_path",
		"wechat.app_id", "wechat.app_secret", "audit.ip_db_path",
	} {
		if !v.IsSet(key) {
			v.SetDefault(key, "")
		}
	}
}

// LoadConfig 加载配置文件，环境变量优先于文件
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml") // 设置配置文件类型
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // 读取环境变量

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate 校验必需的配置项
func (c *Config) Validate() error {
	switch strings.ToUpper(c.JWT.Algorithm) {
	case "HS256":
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required for HS256")
		}
	case "RS256":
		if c.JWT.PrivateKeyPath == "" || c.JWT.PublicKeyPath == "" {
			return fmt.Errorf("jwt.private_key_path and jwt.public_key_path are required for RS256")
		}
	default:
		return fmt.Errorf("unsupported jwt.algorithm: %s", c.JWT.Algorithm)
	}
	if c.JWT.AccessTokenExpire <= 0 || c.JWT.RefreshTokenExpire <= 0 {
		return fmt.Errorf("jwt token expiry must be positive")
	}
	switch c.Database.Driver {
	case database.DriverPostgres, database.DriverMySQL:
	default:
		return fmt.Errorf("unsupported database.driver: %s", c.Database.Driver)
	}
	return nil
}
