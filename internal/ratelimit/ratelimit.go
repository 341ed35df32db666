// internal/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"copyflow/internal/common/logger"
)

// Store counts requests per identifier within a fixed window.
type Store interface {
	// Incr increments the identifier's counter for the current window and
	// returns the new count.
	Incr(ctx context.Context, identifier string, window time.Duration) (int64, error)
}

// Limiter applies a fixed-window request limit per client identifier. Store
// failures fail open: a broken backing store must not take the API down.
type Limiter struct {
	store  Store
	limit  int64
	window time.Duration
	logger logger.Logger
}

func NewLimiter(store Store, limit int64, window time.Duration, log logger.Logger) *Limiter {
	return &Limiter{
		store:  store,
		limit:  limit,
		window: window,
		logger: log.With(map[string]interface{}{"component": "ratelimit"}),
	}
}

func (l *Limiter) Allow(ctx context.Context, identifier string) bool {
	count, err := l.store.Incr(ctx, identifier, l.window)
	if err != nil {
		l.logger.Warn("Rate limit store unavailable, allowing request", map[string]interface{}{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return true
	}
	return count <= l.limit
}

type windowCounter struct {
	count   int64
	resetAt time.Time
}

// MemoryStore is the default single-process store.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[string]*windowCounter),
		now:      time.Now,
	}
}

func (s *MemoryStore) Incr(_ context.Context, identifier string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	counter, ok := s.counters[identifier]
	if !ok || now.After(counter.resetAt) {
		counter = &windowCounter{resetAt: now.Add(window)}
		s.counters[identifier] = counter
	}
	counter.count++
	return counter.count, nil
}

// Tick drops expired counters. Run it periodically so idle identifiers do
// not accumulate forever.
func (s *MemoryStore) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for identifier, counter := range s.counters {
		if now.After(counter.resetAt) {
			delete(s.counters, identifier)
		}
	}
}

// Len reports the number of live counters, for tests and debugging.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}

// RedisStore shares windows across replicas using fixed window buckets.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Incr(ctx context.Context, identifier string, window time.Duration) (int64, error) {
	bucket := time.Now().UnixMilli() / window.Milliseconds()
	key := fmt.Sprintf("ratelimit:%s:%d", identifier, bucket)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
