package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pineapple"

// Metrics 服务指标，使用独立的registry
type Metrics struct {
	registry        *prometheus.Registry
	decisions       *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New 创建并注册指标
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "authz",
			Name:      "decisions_total",
			Help:      "Authorization decisions by outcome and system code.",
		}, []string{"outcome", "system", "allowed"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	m.registry.MustRegister(
		m.decisions,
		m.requests,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveDecision 统计每一次授权判定
func (m *Metrics) ObserveDecision(_ context.Context, req *model.AccessRequest, d *model.Decision) {
	system := req.SystemCode
	if system == "" {
		system = "-"
	}
	m.decisions.WithLabelValues(string(d.Outcome), system, strconv.FormatBool(d.Allowed)).Inc()
}

// HandlerFunc 统计请求数量和耗时，路由按模板聚合
func (m *Metrics) HandlerFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Handler /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 供测试读取
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
