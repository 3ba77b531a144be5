package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiterConfig struct {
	RequestsPerSecond int
	Burst             int
	CleanupInterval   time.Duration
	TTL               time.Duration
}

// rateLimiter keeps one token bucket per client IP. Idle visitors are swept
// while handling requests, no goroutine runs in the background.
type rateLimiter struct {
	cfg RateLimiterConfig

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	now       func() time.Time
}

func (l *rateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if now.Sub(l.lastSweep) >= l.cfg.CleanupInterval {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.cfg.TTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, exists := l.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), l.cfg.Burst)}
		l.visitors[ip] = v
	}

	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// RateLimiterMiddleware limits requests per client IP. A zero RequestsPerSecond
// disables limiting.
func RateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	return newRateLimiter(config, time.Now)
}

func newRateLimiter(config RateLimiterConfig, now func() time.Time) gin.HandlerFunc {
	if config.RequestsPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if config.Burst <= 0 {
		config.Burst = config.RequestsPerSecond
	}
	if config.CleanupInterval == 0 {
		config.CleanupInterval = time.Minute
	}
	if config.TTL == 0 {
		config.TTL = 3 * time.Minute
	}

	l := &rateLimiter{
		cfg:       config,
		visitors:  make(map[string]*visitor),
		lastSweep: now(),
		now:       now,
	}

	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message":   "Too many requests",
				"requestID": c.GetString("requestID"),
			})
			return
		}

		c.Next()
	}
}
