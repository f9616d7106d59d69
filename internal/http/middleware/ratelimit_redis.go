package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"alchemy_webapp/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var (
	redisMu     sync.RWMutex
	redisClient *redis.Client
)

// InitRedisRateLimiter sets the shared Redis client used by the limiters.
// nil switches them to the in-memory counters.
func InitRedisRateLimiter(client *redis.Client) {
	redisMu.Lock()
	defer redisMu.Unlock()
	redisClient = client
}

func currentRedis() *redis.Client {
	redisMu.RLock()
	defer redisMu.RUnlock()
	return redisClient
}

// limiter - фиксированное окно: INCR/EXPIRE в Redis или счётчик в памяти
type limiter struct {
	max    int
	window time.Duration
	prefix string
	mem    *memoryCounter
}

func newLimiter(prefix string, max int, window time.Duration) *limiter {
	if window <= 0 {
		window = time.Minute
	}
	return &limiter{max: max, window: window, prefix: prefix, mem: newMemoryCounter(window)}
}

// hit returns the request count in the current window for ident.
func (l *limiter) hit(ctx context.Context, ident string) (int64, error) {
	key := l.prefix + ":" + strconv.FormatInt(int64(l.window.Seconds()), 10) + ":" + ident

	client := currentRedis()
	if client == nil {
		return l.mem.incr(key), nil
	}

	val, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if val == 1 {
		// first increment, set expiry
		client.Expire(ctx, key, l.window)
	}
	return val, nil
}

// allow applies the limiter and writes the 429 itself. endpoint labels metrics.
func (l *limiter) allow(c *gin.Context, ident, endpoint string) bool {
	if l.max <= 0 {
		return true
	}
	val, err := l.hit(c.Request.Context(), ident)
	if err != nil {
		// on Redis error, fail-open (allow) but set header
		logger.FromContext(c.Request.Context()).Warn("rate limiter redis error", "error", err)
		c.Header("X-RateLimit-Error", "redis-error")
		return true
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(l.max))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(l.max)-val), 10))

	if val > int64(l.max) {
		RLBlocked.WithLabelValues(endpoint).Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"retry_after": int(l.window.Seconds()),
		})
		return false
	}
	RLRequests.WithLabelValues(endpoint).Inc()
	return true
}

// RedisRateLimit limits requests per client IP.
// key format: rl:<window_seconds>:<ip>
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return RedisRateLimitNamed("rl", maxRequests, window)
}

// RedisRateLimitNamed is RedisRateLimit with its own key prefix, so limiters
// stacked on one route keep separate counters.
func RedisRateLimitNamed(prefix string, maxRequests int, window time.Duration) gin.HandlerFunc {
	l := newLimiter(prefix, maxRequests, window)
	return func(c *gin.Context) {
		if !l.allow(c, c.ClientIP(), c.FullPath()) {
			return
		}
		c.Next()
	}
}
