package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"cv-screening-backend/internal/delivery/http/response"
	"cv-screening-backend/pkg/redis"
	"cv-screening-backend/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig describes one fixed-window limiter.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	// KeyFunc picks the bucket for a request. Defaults to the client IP.
	KeyFunc   func(*gin.Context) string
	KeyPrefix string
	// FailClosed answers 503 instead of counting in memory when Redis errors.
	FailClosed bool
}

// RateLimitSettings carries the configured thresholds shared by the presets.
type RateLimitSettings struct {
	Window          time.Duration
	GlobalThreshold int
	LoginThreshold  int
	UploadThreshold int
}

func clientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// DefaultRateLimitConfig limits every admin route per client IP.
func DefaultRateLimitConfig(s RateLimitSettings) RateLimitConfig {
	return RateLimitConfig{Limit: s.GlobalThreshold, Window: s.Window, KeyPrefix: "rl:ip:", KeyFunc: clientIPKey}
}

// LoginRateLimitConfig is the strict preset for the admin login endpoint.
func LoginRateLimitConfig(s RateLimitSettings) RateLimitConfig {
	return RateLimitConfig{Limit: s.LoginThreshold, Window: s.Window, KeyPrefix: "rl:login:", KeyFunc: clientIPKey, FailClosed: true}
}

// UploadRateLimitConfig limits webhook submissions. It fails open so a Redis
// outage never drops candidate CVs.
func UploadRateLimitConfig(s RateLimitSettings) RateLimitConfig {
	return RateLimitConfig{Limit: s.UploadThreshold, Window: s.Window, KeyPrefix: "rl:upload:", KeyFunc: clientIPKey}
}

// windowCounter increments the hit count of key inside its current window.
type windowCounter interface {
	hit(ctx context.Context, key string, window time.Duration) (int, time.Time, error)
}

// INCR then EXPIRE on the first hit, atomically. Returns {count, ttl}.
var fixedWindowScript = goredis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return {count, redis.call('TTL', KEYS[1])}
`)

type redisCounter struct {
	client *goredis.Client
}

func (r redisCounter) hit(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	seconds := int(window.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	vals, err := fixedWindowScript.Run(ctx, r.client, []string{key}, seconds).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(vals) != 2 {
		return 0, time.Time{}, fmt.Errorf("rate limit script: got %d values", len(vals))
	}
	return int(vals[0]), time.Now().Add(time.Duration(vals[1]) * time.Second), nil
}

type memoryWindow struct {
	count   int
	resetAt time.Time
}

// memoryCounter is the per-process fallback. Expired windows are swept on
// access, at most once per window length.
type memoryCounter struct {
	mu        sync.Mutex
	windows   map[string]*memoryWindow
	nextSweep time.Time
	now       func() time.Time
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{windows: make(map[string]*memoryWindow), now: time.Now}
}

func (m *memoryCounter) hit(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.After(m.nextSweep) {
		for k, w := range m.windows {
			if now.After(w.resetAt) {
				delete(m.windows, k)
			}
		}
		m.nextSweep = now.Add(window)
	}

	w, ok := m.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &memoryWindow{resetAt: now.Add(window)}
		m.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt, nil
}

func (m *memoryCounter) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// RateLimitMiddleware counts requests in Redis when it is configured and in
// process memory otherwise. A zero Limit disables it.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	if config.Limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if config.KeyFunc == nil {
		config.KeyFunc = clientIPKey
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	fallback := newMemoryCounter()

	return func(c *gin.Context) {
		key := config.KeyPrefix + config.KeyFunc(c)

		var counter windowCounter = fallback
		if client := redis.Client(); client != nil {
			counter = redisCounter{client: client}
		}
		count, resetAt, err := counter.hit(c.Request.Context(), key, config.Window)
		if err != nil {
			if config.FailClosed {
				auditRateLimit(c, map[string]any{"error_type": "redis_error", "error": err.Error()})
				response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
				c.Abort()
				return
			}
			count, resetAt, _ = fallback.hit(c.Request.Context(), key, config.Window)
		}

		remaining := config.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count <= config.Limit {
			c.Next()
			return
		}

		retryAfter := int(time.Until(resetAt).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		security.DefaultLogger().LogRateLimitTriggered(
			c.Request.Context(), c.ClientIP(), c.GetHeader("User-Agent"), getRequestID(c), c.FullPath())
		response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
		c.Abort()
	}
}

func auditRateLimit(c *gin.Context, details map[string]any) {
	security.DefaultLogger().Log(c.Request.Context(), security.SecurityEvent{
		Event:       security.EventRateLimitTriggered,
		SubjectType: "ip",
		IP:          c.ClientIP(),
		RequestID:   getRequestID(c),
		Details:     details,
	})
}
