package middleware

import (
	"strconv"
	"time"

	"github.com/HadiHz88/medical-records-api/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware Prometheus请求指标中间件
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			// 未匹配到路由的请求统一归类，避免指标基数爆炸
			endpoint = "unmatched"
		}

		metrics.APIRequestsTotal.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		metrics.APIRequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}
