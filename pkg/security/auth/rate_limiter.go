package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// RateLimiter defines an interface for rate limiting functionality
type RateLimiter interface {
	// Allow checks if the request should be allowed based on the key
	Allow(ctx context.Context, key string) (bool, int, time.Time, error)
	// Reset resets the counter for a specific key
	Reset(ctx context.Context, key string) error
}

// RedisRateLimiter implements fixed-window rate limiting shared across instances.
type RedisRateLimiter struct {
	client      *redis.Client
	prefix      string
	window      time.Duration
	maxAttempts int64
}

func NewRedisRateLimiter(client *redis.Client, window time.Duration, maxAttempts int64) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:      client,
		prefix:      "swhouse:ratelimit:",
		window:      window,
		maxAttempts: maxAttempts,
	}
}

func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	redisKey := rl.prefix + key
	windowStart := time.Now().Truncate(rl.window)
	resetTime := windowStart.Add(rl.window)

	pipe := rl.client.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireAt(ctx, redisKey, resetTime)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, fmt.Errorf("rate limiter error: %w", err)
	}

	count := incr.Val()
	return count <= rl.maxAttempts, remaining(rl.maxAttempts, count), resetTime, nil
}

func (rl *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	return rl.client.Del(ctx, rl.prefix+key).Err()
}

// MemoryRateLimiter is the single-instance fixed-window limiter used when Redis is disabled.
type MemoryRateLimiter struct {
	mu          sync.Mutex
	window      time.Duration
	maxAttempts int64
	counters    map[string]*windowCounter
	now         func() time.Time
}

type windowCounter struct {
	start time.Time
	count int64
}

func NewMemoryRateLimiter(window time.Duration, maxAttempts int64) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		window:      window,
		maxAttempts: maxAttempts,
		counters:    make(map[string]*windowCounter),
		now:         time.Now,
	}
}

func (rl *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, int, time.Time, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	windowStart := rl.now().Truncate(rl.window)
	counter, ok := rl.counters[key]
	if !ok || !counter.start.Equal(windowStart) {
		counter = &windowCounter{start: windowStart}
		rl.counters[key] = counter
		rl.evict(windowStart)
	}
	counter.count++

	return counter.count <= rl.maxAttempts, remaining(rl.maxAttempts, counter.count), windowStart.Add(rl.window), nil
}

func (rl *MemoryRateLimiter) Reset(_ context.Context, key string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.counters, key)
	return nil
}

// evict drops counters of past windows.
func (rl *MemoryRateLimiter) evict(current time.Time) {
	for k, c := range rl.counters {
		if c.start.Before(current) {
			delete(rl.counters, k)
		}
	}
}

func remaining(max, count int64) int {
	if count >= max {
		return 0
	}
	return int(max - count)
}
