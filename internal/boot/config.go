package boot

import (
	"github.com/Joker-Pro-Max/Pineapple/pkg/config"
	"github.com/Joker-Pro-Max/Pineapple/pkg/logger"
)

// InitConfig 初始化配置并设置日志级别
func InitConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(cfg.Log.Level)
	return cfg, nil
}
