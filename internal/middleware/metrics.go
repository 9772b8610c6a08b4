package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-console/internal/service"
)

// unmatchedRoute labels requests gin could not route so stray paths do not
// blow up label cardinality.
const unmatchedRoute = "unmatched"

// Metrics records per-route request metrics. Dashboard event streams are
// skipped since their duration is the lifetime of the subscription.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		if isEventStream(c) {
			return
		}
		path := c.FullPath()
		if path == "" {
			path = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

func isEventStream(c *gin.Context) bool {
	return strings.HasPrefix(c.Writer.Header().Get("Content-Type"), "text/event-stream")
}
