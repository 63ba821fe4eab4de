package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/grocerylab/grocery-api/internal/cache"
	"github.com/grocerylab/grocery-api/pkg/errors"
	"github.com/grocerylab/grocery-api/pkg/response"
)

// RateLimit limits requests per (clientIP, route) within a fixed window. The
// counters live in the shared cache store, so the limit holds across
// instances when Redis backs the cache.
func RateLimit(store cache.Store, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || maxRequests <= 0 || window <= 0 {
			c.Next()
			return
		}

		key := "ratelimit." + c.ClientIP() + "|" + c.FullPath()

		count, resetIn, err := store.IncrementWithTTL(c.Request.Context(), key, window)
		if err != nil {
			// A broken limiter must not take the API down with it.
			c.Next()
			return
		}

		remaining := maxRequests - int(count)
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(resetIn.Seconds())))

		if count > int64(maxRequests) {
			response.Error(c, errors.ErrRateLimit)
			c.Abort()
			return
		}

		c.Next()
	}
}
