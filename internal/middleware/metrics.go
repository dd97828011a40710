package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amar-rokto/api/internal/service"
)

// Metrics records request counts and latency per route template. The
// scrape and probe endpoints are skipped, and unmatched paths collapse
// into one label so scanners cannot blow up the cardinality.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		route := c.FullPath()
		switch route {
		case "/metrics", "/health", "/ready":
			c.Next()
			return
		case "":
			route = "unmatched"
		}

		start := time.Now()
		c.Next()
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
