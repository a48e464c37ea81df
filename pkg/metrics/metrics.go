package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Server Metrics

	// APIRequestsTotal API请求总数
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// APIRequestDuration API请求处理时长
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Domain Metrics

	// TemplatesCreatedTotal 模板创建总数
	TemplatesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "templates_created_total",
			Help: "Total number of templates created",
		},
	)

	// RecordsCreatedTotal 记录创建总数（按模板ID）
	RecordsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_created_total",
			Help: "Total number of records created",
		},
		[]string{"template_id"},
	)

	// ValidationFailuresTotal 提交校验失败总数（按失败类型）
	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "record_validation_failures_total",
			Help: "Total number of record submissions rejected by validation",
		},
		[]string{"reason"},
	)

	// TemplateCacheHits 模板缓存命中数
	TemplateCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "template_cache_hits_total",
			Help: "Total number of template schema cache hits",
		},
	)

	// TemplateCacheMisses 模板缓存未命中数
	TemplateCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "template_cache_misses_total",
			Help: "Total number of template schema cache misses",
		},
	)
)
