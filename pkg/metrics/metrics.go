// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集 HTTP、上传流程与数据库健康指标.
//
// Example:
//
//	if err := metrics.InitMetrics(cfg.Metrics); err != nil {
//		log.Fatal(err)
//	}
//
//	metrics.UploadsTotal.WithLabelValues(metrics.UploadResultStored).Inc()
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/pdfvault/pkg/configs"
)

// 上传结果标签.
const (
	UploadResultStored   = "stored"
	UploadResultRejected = "rejected"
	UploadResultFailed   = "failed"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections 活跃连接数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of active connections",
		},
	)

	// UploadsTotal 按结果统计的上传次数.
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfvault_uploads_total",
			Help: "Total number of PDF uploads by result",
		},
		[]string{"result"},
	)

	// UploadBytes 成功写入的文件大小.
	UploadBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pdfvault_upload_bytes",
			Help:    "Size of stored PDF files in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
	)

	// CleanupFailures 插入失败后删除文件仍失败的次数.
	CleanupFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pdfvault_cleanup_failures_total",
			Help: "Orphaned files that could not be removed after a failed insert",
		},
	)

	// EventsPublished 事件发布次数.
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfvault_events_published_total",
			Help: "Events published by topic and result",
		},
		[]string{"topic", "result"},
	)

	// CircuitBreakerState 熔断器状态：0 关闭，1 半开，2 打开.
	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pdfvault_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	// DBHealthy 最近一次数据库检查结果，1 表示正常.
	DBHealthy = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pdfvault_db_healthy",
			Help: "Result of the last database schema check (1 healthy, 0 failing)",
		},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()

	initOnce sync.Once
)

// InitMetrics 初始化Metrics. 重复调用只注册一次.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	initOnce.Do(func() {
		// 默认注册表自带运行时收集器，关闭时移除
		if !config.RuntimeMetrics {
			prometheus.Unregister(collectors.NewGoCollector())
			prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		}

		registry.MustRegister(
			RequestCounter, RequestDuration, ActiveConnections,
			UploadsTotal, UploadBytes, CleanupFailures, EventsPublished, DBHealthy,
			CircuitBreakerState,
		)
	})

	return nil
}

// Handler 返回指标 HTTP 处理器. GORM 插件把连接池指标注册在默认注册表上，这里一并暴露.
func Handler() http.Handler {
	return promhttp.HandlerFor(
		prometheus.Gatherers{registry, prometheus.DefaultGatherer},
		promhttp.HandlerOpts{},
	)
}

// StartMetricsServer 在 engine 上挂载指标端点.
func StartMetricsServer(config configs.MetricsConfig, engine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	path := config.Path
	if path == "" {
		path = "/metrics"
	}

	engine.GET(path, gin.WrapH(Handler()))

	// 如果启用pprof，注册pprof端点
	if config.Pprof {
		engine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}
