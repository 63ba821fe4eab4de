package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/grocerylab/grocery-api/pkg/metrics"
)

// Metrics observes per-route request latency. The route template is used as
// the path label so /api/products/42 and /api/products/7 share a series;
// unmatched requests are bucketed together to keep cardinality bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		metrics.APILatency.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
