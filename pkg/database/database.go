package database

import (
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 支持的关系型数据库
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config 数据库配置
type Config struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// Dialector 根据驱动类型构造gorm方言
func (c *Config) Dialector() (gorm.Dialector, error) {
	switch c.Driver {
	case DriverPostgres, "":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
			c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode)
		return postgres.Open(dsn), nil
	case DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.DBName)
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.Driver)
	}
}

// ParseLogLevel 解析gorm日志级别
func ParseLogLevel(mode string) logger.LogLevel {
	switch mode {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// NewDB 创建关系型数据库连接
func NewDB(config *Config, logLevel logger.LogLevel) (*gorm.DB, error) {
	dialector, err := config.Dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		log.Printf("Failed to connect to database: %v\n", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 获取底层的sqlDB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	return db, nil
}
