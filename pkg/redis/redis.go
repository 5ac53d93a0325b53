package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 5 * time.Second
	ioTimeout   = 3 * time.Second
)

// Config Redis连接配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Client 令牌注销列表使用的Redis客户端
type Client struct {
	*redis.Client
}

// NewClient 创建客户端并检查连通性
func NewClient(config *Config) (*Client, error) {
	c := newClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to connect to redis %s: %w", c.Options().Addr, err)
	}
	return c, nil
}

// NewFromAddr 按地址创建客户端，不检查连通性
func NewFromAddr(addr string) *Client {
	return newClient(&redis.Options{Addr: addr})
}

func newClient(opts *redis.Options) *Client {
	opts.DialTimeout = dialTimeout
	opts.ReadTimeout = ioTimeout
	opts.WriteTimeout = ioTimeout
	return &Client{redis.NewClient(opts)}
}

// Healthy 连接是否可用
func (c *Client) Healthy(ctx context.Context) bool {
	return c.Ping(ctx).Err() == nil
}

// SetWithTTL 写入带过期时间的键
func (c *Client) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Set(ctx, key, value, ttl).Err()
}

// Exists 键是否存在
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.Client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
