package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/prometheus"
)

// Metrics records per-request counters and latency into AppMetrics. The route
// template (not the raw path) is used as the path label to bound cardinality.
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		m.HTTPActiveRequests.WithLabelValues(c.Request.Method).Inc()
		start := time.Now()

		c.Next()

		m.HTTPActiveRequests.WithLabelValues(c.Request.Method).Dec()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		prometheus.RecordHTTPRequest(m, c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
