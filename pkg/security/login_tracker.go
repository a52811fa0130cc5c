package security

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cv-screening-backend/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
)

// LoginTrackerConfig controls admin login lockout.
type LoginTrackerConfig struct {
	MaxAttempts   int           // failed attempts before a block
	AttemptWindow time.Duration // lifetime of the failure counter
	BlockDuration time.Duration
}

func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
	}
}

// attemptStore holds failure counters and blocks. The Redis store is used when
// a client is configured, otherwise counters live in process memory.
type attemptStore interface {
	incr(ctx context.Context, key string, ttl time.Duration) (int, error)
	block(ctx context.Context, key string, ttl time.Duration) error
	blockTTL(ctx context.Context, key string) (time.Duration, error)
	del(ctx context.Context, keys ...string) error
}

// LoginTracker counts failed admin logins per email and per IP and blocks the
// subject once MaxAttempts is reached.
type LoginTracker struct {
	config LoginTrackerConfig
	store  attemptStore
	logger *SecurityLogger
}

func NewLoginTracker(config LoginTrackerConfig, logger *SecurityLogger) *LoginTracker {
	if logger == nil {
		logger = DefaultLogger()
	}
	var store attemptStore = newMemoryAttemptStore(time.Now)
	if client := redis.Client(); client != nil {
		store = redisAttemptStore{client: client}
	}
	return &LoginTracker{config: config, store: store, logger: logger}
}

// NewInMemoryLoginTracker never touches Redis. now may be nil.
func NewInMemoryLoginTracker(config LoginTrackerConfig, logger *SecurityLogger, now func() time.Time) *LoginTracker {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = NewSecurityLogger(nil, "test")
	}
	return &LoginTracker{config: config, store: newMemoryAttemptStore(now), logger: logger}
}

const (
	failLoginUserPrefix    = "fail:admin-login:user:"
	failLoginIPPrefix      = "fail:admin-login:ip:"
	blockedLoginUserPrefix = "blocked:admin-login:user:"
	blockedLoginIPPrefix   = "blocked:admin-login:ip:"
)

// BlockedFor returns the remaining block on the email or IP, zero when
// neither is blocked.
func (lt *LoginTracker) BlockedFor(ctx context.Context, email, ip string) (time.Duration, error) {
	ttl, err := lt.store.blockTTL(ctx, blockedLoginUserPrefix+email)
	if err != nil {
		return 0, fmt.Errorf("check user block: %w", err)
	}
	if ttl > 0 || ip == "" {
		return ttl, nil
	}
	ttl, err = lt.store.blockTTL(ctx, blockedLoginIPPrefix+ip)
	if err != nil {
		return 0, fmt.Errorf("check ip block: %w", err)
	}
	return ttl, nil
}

// RecordFailure counts a failed attempt and reports whether it created a block.
func (lt *LoginTracker) RecordFailure(ctx context.Context, email, ip, userAgent, requestID, reason string) (bool, error) {
	lt.logger.LogLoginFailed(ctx, email, ip, userAgent, requestID, reason)

	count, err := lt.store.incr(ctx, failLoginUserPrefix+email, lt.config.AttemptWindow)
	if err != nil {
		return false, fmt.Errorf("increment user counter: %w", err)
	}
	if ip != "" {
		ipCount, err := lt.store.incr(ctx, failLoginIPPrefix+ip, lt.config.AttemptWindow)
		if err == nil && ipCount > count {
			count = ipCount
		}
	}
	if count < lt.config.MaxAttempts {
		return false, nil
	}

	if err := lt.store.block(ctx, blockedLoginUserPrefix+email, lt.config.BlockDuration); err != nil {
		return false, fmt.Errorf("block user: %w", err)
	}
	if ip != "" {
		_ = lt.store.block(ctx, blockedLoginIPPrefix+ip, lt.config.BlockDuration)
	}
	lt.logger.LogLoginBlocked(ctx, email, ip, userAgent, requestID, lt.config.BlockDuration)
	return true, nil
}

// Reset clears the failure counters after a successful login.
func (lt *LoginTracker) Reset(ctx context.Context, email, ip string) error {
	keys := []string{failLoginUserPrefix + email}
	if ip != "" {
		keys = append(keys, failLoginIPPrefix+ip)
	}
	return lt.store.del(ctx, keys...)
}

// --- Redis ---

const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

type redisAttemptStore struct {
	client *goredis.Client
}

func (s redisAttemptStore) incr(ctx context.Context, key string, ttl time.Duration) (int, error) {
	result, err := s.client.Eval(ctx, incrWithTTLScript, []string{key}, int(ttl.Seconds())).Result()
	if err != nil {
		return 0, err
	}
	count, ok := result.(int64)
	if !ok {
		return 0, errors.New("unexpected result type from Lua script")
	}
	return int(count), nil
}

func (s redisAttemptStore) block(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Set(ctx, key, "1", ttl).Err()
}

func (s redisAttemptStore) blockTTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (s redisAttemptStore) del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// --- in-memory ---

type memoryEntry struct {
	count     int
	expiresAt time.Time
}

type memoryAttemptStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func newMemoryAttemptStore(now func() time.Time) *memoryAttemptStore {
	return &memoryAttemptStore{entries: make(map[string]memoryEntry), now: now}
}

func (s *memoryAttemptStore) live(key string) (memoryEntry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}

func (s *memoryAttemptStore) incr(_ context.Context, key string, ttl time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok {
		e = memoryEntry{expiresAt: s.now().Add(ttl)}
	}
	e.count++
	s.entries[key] = e
	return e.count, nil
}

func (s *memoryAttemptStore) block(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{count: 1, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *memoryAttemptStore) blockTTL(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok {
		return 0, nil
	}
	return e.expiresAt.Sub(s.now()), nil
}

func (s *memoryAttemptStore) del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	return nil
}
