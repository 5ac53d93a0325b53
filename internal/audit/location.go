package audit

import (
	"fmt"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/Joker-Pro-Max/Pineapple/pkg/logger"

	"github.com/lionsoul2014/ip2region/binding/golang/xdb"
)

// Locator IP归属地查询
type Locator interface {
	Lookup(ip string) string
}

// ip2regionLocator 基于ip2region xdb文件的实现，首次查询时加载
type ip2regionLocator struct {
	dbPath    string
	searcher  *xdb.Searcher
	initOnce  sync.Once
	initError error
}

// NewLocator 创建归属地查询，dbPath为空时不查询
func NewLocator(dbPath string) Locator {
	if dbPath == "" {
		return noopLocator{}
	}
	return &ip2regionLocator{dbPath: dbPath}
}

func (l *ip2regionLocator) init() error {
	l.initOnce.Do(func() {
		content, err := os.ReadFile(l.dbPath)
		if err != nil {
			l.initError = fmt.Errorf("failed to read ip database: %w", err)
			return
		}
		searcher, err := xdb.NewWithBuffer(content)
		if err != nil {
			l.initError = fmt.Errorf("failed to create ip searcher: %w", err)
			return
		}
		l.searcher = searcher
	})
	return l.initError
}

// Lookup 返回 "国家 省份 城市 运营商"，查询失败返回空串
func (l *ip2regionLocator) Lookup(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.To4() == nil {
		return ""
	}
	if parsed.IsLoopback() || parsed.IsPrivate() {
		return "内网IP"
	}
	if err := l.init(); err != nil {
		logger.Warn("[AUDIT] ip location disabled: %v", err)
		return ""
	}

	// ip2region 返回格式: "中国|0|江苏省|南京市|电信"
	region, err := l.searcher.SearchByStr(ip)
	if err != nil {
		return ""
	}
	return FormatRegion(region)
}

// FormatRegion 去掉ip2region结果中的占位0
func FormatRegion(region string) string {
	var parts []string
	for _, part := range strings.Split(region, "|") {
		if part != "" && part != "0" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

type noopLocator struct{}

func (noopLocator) Lookup(string) string { return "" }
