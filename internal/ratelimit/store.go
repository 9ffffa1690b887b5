package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CounterStore increments a fixed-window counter and reports the
// post-increment count plus the window's remaining TTL. The TTL is re-armed
// to the full window on every increment. Implementations must make the
// increment-and-read atomic per key.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// RedisStore counts in Redis via a pipelined INCR + EXPIRE. It is the
// primary store for horizontally scaled deployments: all instances share one
// counter per key.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Incr atomically increments key and re-arms its TTL to window.
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	return incr.Val(), window, nil
}

// memoryEntry is one in-process fixed window.
type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

// MemoryStore is the degraded, process-local fallback used when Redis is
// unreachable. Counts are best-effort: they are not shared across instances
// and vanish on restart. That is an accepted availability tradeoff; the
// limiter additionally fails open when even this store errors.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemoryStore constructs an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// Incr increments key within its current window, starting a new window when
// none is active. Expired entries are replaced in place; a modest
// opportunistic cleanup bounds memory between windows.
func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		e = &memoryEntry{}
		s.entries[key] = e
	}
	e.count++
	e.expiresAt = now.Add(window)

	if len(s.entries) > 10000 {
		for k, v := range s.entries {
			if !now.Before(v.expiresAt) {
				delete(s.entries, k)
			}
		}
	}
	return e.count, e.expiresAt.Sub(now), nil
}

// SetClock overrides the store clock. Test seam.
func (s *MemoryStore) SetClock(now func() time.Time) { s.now = now }

// FallbackStore tries a primary store and degrades to a secondary when the
// primary errors. Intended composition: Redis primary, MemoryStore secondary.
type FallbackStore struct {
	Primary   CounterStore
	Secondary CounterStore
}

// Incr counts against the primary, then the secondary. An error from the
// secondary propagates; the middleware treats it per its fail-open policy.
func (f *FallbackStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, ttl, err := f.Primary.Incr(ctx, key, window)
	if err == nil {
		return count, ttl, nil
	}
	return f.Secondary.Incr(ctx, key, window)
}
