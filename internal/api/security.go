package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"lexdesk/training-monitor/internal/config"
)

// CORS only echoes origins on the allow list.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	originSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[o] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && originSet[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter allows maxRequests per window for each authenticated user, or
// per client IP before authentication. Idle entries are swept on access.
func RateLimiter(maxRequests int, window time.Duration) gin.HandlerFunc {
	if maxRequests <= 0 || window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	var (
		mu        sync.Mutex
		store     = make(map[string]*visitor)
		lastSweep = time.Now()
	)
	expiry := window * 3
	if expiry < time.Minute {
		expiry = time.Minute
	}
	limit := rate.Every(refillInterval(maxRequests, window))

	return func(c *gin.Context) {
		key := c.ClientIP()
		if id, err := getUserIDFromContext(c); err == nil {
			key = "user:" + id
		}

		now := time.Now()
		mu.Lock()
		if now.Sub(lastSweep) > time.Minute {
			for k, v := range store {
				if now.Sub(v.lastSeen) > expiry {
					delete(store, k)
				}
			}
			lastSweep = now
		}
		v, exists := store[key]
		if !exists {
			v = &visitor{limiter: rate.NewLimiter(limit, maxRequests)}
			store[key] = v
		}
		v.lastSeen = now
		mu.Unlock()

		if !v.limiter.Allow() {
			abortWithError(c, http.StatusTooManyRequests, "too many requests")
			return
		}
		c.Next()
	}
}

// refillInterval spreads window over maxRequests tokens. A zero interval
// would mean rate.Inf and no limiting at all, so it is clamped.
func refillInterval(maxRequests int, window time.Duration) time.Duration {
	interval := window / time.Duration(maxRequests)
	if interval < config.MinRateInterval {
		return config.MinRateInterval
	}
	return interval
}
