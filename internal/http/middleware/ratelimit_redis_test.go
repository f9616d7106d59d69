package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alchemy_webapp/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func limitedRouter(h ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	h = append(h, func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/test", h...)
	return r
}

func get(r http.Handler, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRedisRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	InitRedisRateLimiter(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { InitRedisRateLimiter(nil) })

	r := limitedRouter(RedisRateLimit(2, 2*time.Second))
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, get(r).Code)
	}
	w := get(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	// окно истекло
	mr.FastForward(3 * time.Second)
	assert.Equal(t, http.StatusOK, get(r).Code)
}

func TestStackedLimitersKeepSeparateCounters(t *testing.T) {
	mr := miniredis.RunT(t)
	InitRedisRateLimiter(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { InitRedisRateLimiter(nil) })

	r := gin.New()
	api := r.Group("/api", RedisRateLimit(60, time.Minute))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	api.GET("/catalog", ok)
	api.POST("/auth", RedisRateLimitNamed("rl_auth", 10, time.Minute), ok)

	call := func(method, path string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		return w.Code
	}

	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, call(http.MethodGet, "/api/catalog"))
	}
	assert.Equal(t, http.StatusOK, call(http.MethodPost, "/api/auth"))

	mr.CheckGet(t, "rl:60:192.0.2.1", "11")
	mr.CheckGet(t, "rl_auth:60:192.0.2.1", "1")

	for i := 0; i < 9; i++ {
		require.Equal(t, http.StatusOK, call(http.MethodPost, "/api/auth"))
	}
	assert.Equal(t, http.StatusTooManyRequests, call(http.MethodPost, "/api/auth"))
	assert.Equal(t, http.StatusOK, call(http.MethodGet, "/api/catalog"))
}

func TestRedisRateLimitFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	InitRedisRateLimiter(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}))
	t.Cleanup(func() { InitRedisRateLimiter(nil) })
	mr.Close()

	r := limitedRouter(RedisRateLimit(1, time.Minute))
	for i := 0; i < 3; i++ {
		w := get(r)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "redis-error", w.Header().Get("X-RateLimit-Error"))
	}
}

func TestMemoryRateLimit(t *testing.T) {
	InitRedisRateLimiter(nil)

	r := limitedRouter(RedisRateLimit(3, 50*time.Millisecond))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(r).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, get(r).Code)

	assert.Eventually(t, func() bool { return get(r).Code == http.StatusOK }, time.Second, 20*time.Millisecond)
}

func TestMemoryCounterKeepsWindow(t *testing.T) {
	m := newMemoryCounter(time.Hour)
	assert.EqualValues(t, 1, m.incr("a"))
	assert.EqualValues(t, 2, m.incr("a"))
	assert.EqualValues(t, 1, m.incr("b"))
}

func TestUserRateLimitAndJWT(t *testing.T) {
	InitRedisRateLimiter(nil)
	require.NoError(t, service.InitJWT("mw-secret"))

	r := limitedRouter(JWT(), UserRateLimit("send", 1, time.Minute), RequestID())

	assert.Equal(t, http.StatusUnauthorized, get(r).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Authorization", "Bearer junk").Code)

	tok1, err := service.GenerateJWT(1)
	require.NoError(t, err)
	tok2, err := service.GenerateJWT(2)
	require.NoError(t, err)

	w := get(r, "Authorization", "Bearer "+tok1, RequestIDHeader, "req-1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))

	assert.Equal(t, http.StatusTooManyRequests, get(r, "Authorization", "Bearer "+tok1).Code)
	// лимит считается на пользователя, а не на IP
	assert.Equal(t, http.StatusOK, get(r, "Authorization", "Bearer "+tok2).Code)
}

func TestRequestIDGenerated(t *testing.T) {
	r := limitedRouter(RequestID(), Metrics())
	w := get(r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}
