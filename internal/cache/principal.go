// Package cache provides a short-TTL, process-local cache of principal
// snapshots used by the authentication middleware. Entries are read-through
// copies of user rows: created on miss, refreshed wholesale after expiry,
// removed by explicit invalidation or by a periodic sweep. The cache never
// stores lookup failures and never serves an entry past its expiry.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bookline-app/bookline-backend/internal/domain"
)

// Default lifetimes. A 30-second snapshot TTL keeps deactivations visible
// quickly; the sweep removes expired entries that are no longer queried.
const (
	DefaultTTL        = 30 * time.Second
	DefaultSweepEvery = 5 * time.Minute
)

// PrincipalSource is the persistence collaborator: it loads the non-sensitive
// profile projection for a user id. A missing user is (nil, nil), not an
// error.
type PrincipalSource interface {
	FindPrincipal(ctx context.Context, id string) (*domain.Principal, error)
}

// entry pairs a snapshot with its absolute expiry instant.
type entry struct {
	principal *domain.Principal
	expiresAt time.Time
}

// PrincipalCache is a bounded-lifetime key-value store of principal
// snapshots with an owned sweep goroutine. Safe for concurrent use. Two
// concurrent misses for the same id may both hit the source and both write;
// last write wins, which is acceptable for time-bounded read-through data.
type PrincipalCache struct {
	source     PrincipalSource
	ttl        time.Duration
	sweepEvery time.Duration

	// now is an injectable clock for expiry tests.
	now func() time.Time

	mu      sync.Mutex
	entries map[string]entry

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewPrincipalCache constructs a cache over the given source. Non-positive
// durations fall back to the defaults. The sweep does not run until Start.
func NewPrincipalCache(source PrincipalSource, ttl, sweepEvery time.Duration) *PrincipalCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if sweepEvery <= 0 {
		sweepEvery = DefaultSweepEvery
	}
	return &PrincipalCache{
		source:     source,
		ttl:        ttl,
		sweepEvery: sweepEvery,
		now:        time.Now,
		entries:    make(map[string]entry),
		stopCh:     make(chan struct{}),
	}
}

// Get returns the cached snapshot for id when present and unexpired;
// otherwise it reads through the source, caches a fresh snapshot, and
// returns it. A missing principal clears any stale entry and returns
// (nil, nil) without caching the negative result, so the next call re-checks
// the source. Source errors propagate uncached.
func (pc *PrincipalCache) Get(ctx context.Context, id string) (*domain.Principal, error) {
	now := pc.now()

	pc.mu.Lock()
	if e, ok := pc.entries[id]; ok && now.Before(e.expiresAt) {
		pc.mu.Unlock()
		return e.principal, nil
	}
	pc.mu.Unlock()

	p, err := pc.source.FindPrincipal(ctx, id)
	if err != nil {
		return nil, err
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if p == nil {
		delete(pc.entries, id)
		return nil, nil
	}
	pc.entries[id] = entry{principal: p, expiresAt: pc.now().Add(pc.ttl)}
	return p, nil
}

// Invalidate unconditionally removes the entry for id. Call it from any code
// path that mutates a user's profile or active status.
func (pc *PrincipalCache) Invalidate(id string) {
	pc.mu.Lock()
	delete(pc.entries, id)
	pc.mu.Unlock()
}

// Len reports the current number of entries, expired or not.
func (pc *PrincipalCache) Len() int {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return len(pc.entries)
}

// Start launches the background sweep. Safe to call once per cache; the
// sweep runs until Stop.
func (pc *PrincipalCache) Start() {
	go func() {
		t := time.NewTicker(pc.sweepEvery)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				removed := pc.sweep()
				if removed > 0 {
					log.Debug().Int("removed", removed).Msg("principal cache sweep")
				}
			case <-pc.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the sweep goroutine. Idempotent.
func (pc *PrincipalCache) Stop() {
	pc.stopOnce.Do(func() { close(pc.stopCh) })
}

// sweep removes every expired entry regardless of access and reports how
// many were dropped.
func (pc *PrincipalCache) sweep() int {
	now := pc.now()
	pc.mu.Lock()
	defer pc.mu.Unlock()
	removed := 0
	for id, e := range pc.entries {
		if !now.Before(e.expiresAt) {
			delete(pc.entries, id)
			removed++
		}
	}
	return removed
}

// SetClock overrides the cache clock. Test seam.
func (pc *PrincipalCache) SetClock(now func() time.Time) { pc.now = now }
