package middlewares

import (
	"net"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"jan-server/services/messaging-api/internal/infrastructure/metrics"
	"jan-server/services/messaging-api/internal/utils/platformerrors"
)

const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// WriteLimiter throttles conversation writes per actor with a token bucket.
type WriteLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	now      func() time.Time
	lastGC   time.Time
}

// NewWriteLimiter allows perMinute writes per actor. A non-positive value returns nil, which disables limiting.
func NewWriteLimiter(perMinute int) *WriteLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &WriteLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
		now:      time.Now,
	}
}

// Middleware rejects requests over the limit with 429.
func (l *WriteLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		if !l.allow(rateKey(c)) {
			metrics.RateLimitedTotal.Inc()
			c.Header("Retry-After", "60")
			platformerrors.WriteRateLimited(c, "too many requests")
			return
		}
		c.Next()
	}
}

func (l *WriteLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastGC) > limiterIdleTTL {
		for k, entry := range l.limiters {
			if now.Sub(entry.lastSeen) > limiterIdleTTL {
				delete(l.limiters, k)
			}
		}
		l.lastGC = now
	}

	entry, ok := l.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func rateKey(c *gin.Context) string {
	if actorID := c.GetString("user_id"); actorID != "" {
		return "actor:" + actorID
	}
	if ip := net.ParseIP(c.ClientIP()); ip != nil {
		return "ip:" + ip.String()
	}
	return "anonymous"
}
