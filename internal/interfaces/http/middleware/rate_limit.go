// internal/interfaces/http/middleware/rate_limit.go
package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmaway/storefront/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const rateLimitWindow = time.Minute

// Counter increments a key that expires after window. Backed by Redis.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit caps requests per client IP per minute using a shared counter.
// When the counter is unavailable the request is let through.
func RateLimit(cfg *config.Config, counter Counter, log *logrus.Logger) gin.HandlerFunc {
	limit := int64(cfg.Security.RateLimitPerMinute)

	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		window := time.Now().Truncate(rateLimitWindow)
		key := "rate_limit:" + c.ClientIP() + ":" + strconv.FormatInt(window.Unix(), 10)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		current, err := counter.Incr(ctx, key, rateLimitWindow)
		cancel()
		if err != nil {
			log.WithError(err).Warn("Rate limit counter unavailable")
			c.Next()
			return
		}

		remaining := limit - current
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(window.Add(rateLimitWindow).Unix(), 10))

		if current > limit {
			retryAfter := int(time.Until(window.Add(rateLimitWindow)).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}

// BurstLimiter keeps one token bucket per client IP
type BurstLimiter struct {
	mu      sync.Mutex
	clients map[string]*burstEntry
	rate    rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
}

type burstEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewBurstLimiter allows burst requests at once, refilled at perMinute
func NewBurstLimiter(perMinute, burst int) *BurstLimiter {
	if burst < 1 {
		burst = 1
	}
	if perMinute < 1 {
		perMinute = burst
	}
	return &BurstLimiter{
		clients: make(map[string]*burstEntry),
		rate:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
		ttl:     10 * time.Minute,
		now:     time.Now,
	}
}

// Allow reports whether the client may make another request now
func (b *BurstLimiter) Allow(client string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	entry, ok := b.clients[client]
	if !ok {
		b.evict(now)
		entry = &burstEntry{limiter: rate.NewLimiter(b.rate, b.burst)}
		b.clients[client] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// evict drops idle clients. Called with the lock held.
func (b *BurstLimiter) evict(now time.Time) {
	for client, entry := range b.clients {
		if now.Sub(entry.lastSeen) > b.ttl {
			delete(b.clients, client)
		}
	}
}

// BurstLimit guards sensitive endpoints such as login and order lookup
func BurstLimit(limiter *BurstLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many attempts, please try again later",
			})
			return
		}
		c.Next()
	}
}
