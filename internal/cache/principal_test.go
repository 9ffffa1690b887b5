package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bookline-app/bookline-backend/internal/domain"
)

// fakeSource counts lookups and serves from a mutable map.
type fakeSource struct {
	mu    sync.Mutex
	calls int
	users map[string]*domain.Principal
	err   error
}

func (f *fakeSource) FindPrincipal(_ context.Context, id string) (*domain.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestCache(src PrincipalSource) (*PrincipalCache, *time.Time) {
	pc := NewPrincipalCache(src, 30*time.Second, time.Hour)
	now := time.Unix(1700000000, 0)
	pc.SetClock(func() time.Time { return now })
	return pc, &now
}

func TestGet_ReadThroughAndHit(t *testing.T) {
	src := &fakeSource{users: map[string]*domain.Principal{
		"u1": {ID: "u1", Email: "a@b.c", IsActive: true},
	}}
	pc, _ := newTestCache(src)

	p, err := pc.Get(context.Background(), "u1")
	if err != nil || p == nil || p.ID != "u1" {
		t.Fatalf("miss path failed: %v %v", p, err)
	}
	if _, err := pc.Get(context.Background(), "u1"); err != nil {
		t.Fatalf("hit path failed: %v", err)
	}
	if got := src.callCount(); got != 1 {
		t.Fatalf("expected one source lookup, got %d", got)
	}
}

func TestGet_ExpiryRefetches(t *testing.T) {
	src := &fakeSource{users: map[string]*domain.Principal{
		"u1": {ID: "u1", IsActive: true},
	}}
	pc, now := newTestCache(src)

	if _, err := pc.Get(context.Background(), "u1"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// One second before expiry: still a hit.
	*now = now.Add(29 * time.Second)
	_, _ = pc.Get(context.Background(), "u1")
	if got := src.callCount(); got != 1 {
		t.Fatalf("entry expired early: %d lookups", got)
	}

	// At the expiry instant the entry is stale.
	*now = now.Add(time.Second)
	_, _ = pc.Get(context.Background(), "u1")
	if got := src.callCount(); got != 2 {
		t.Fatalf("expired entry was served: %d lookups", got)
	}
}

func TestGet_MissingUserNotCached(t *testing.T) {
	src := &fakeSource{users: map[string]*domain.Principal{}}
	pc, _ := newTestCache(src)

	p, err := pc.Get(context.Background(), "ghost")
	if err != nil || p != nil {
		t.Fatalf("missing user: got (%v, %v), want (nil, nil)", p, err)
	}
	if pc.Len() != 0 {
		t.Fatalf("negative result was cached")
	}
	// Absence is re-checked every time.
	_, _ = pc.Get(context.Background(), "ghost")
	if got := src.callCount(); got != 2 {
		t.Fatalf("expected 2 lookups for repeated misses, got %d", got)
	}
}

func TestGet_SourceErrorPropagatesUncached(t *testing.T) {
	boom := errors.New("db down")
	src := &fakeSource{err: boom}
	pc, _ := newTestCache(src)

	if _, err := pc.Get(context.Background(), "u1"); !errors.Is(err, boom) {
		t.Fatalf("source error lost: %v", err)
	}
	if pc.Len() != 0 {
		t.Fatalf("error result was cached")
	}
}

func TestInvalidate(t *testing.T) {
	src := &fakeSource{users: map[string]*domain.Principal{
		"u1": {ID: "u1", IsActive: true},
	}}
	pc, _ := newTestCache(src)

	_, _ = pc.Get(context.Background(), "u1")
	pc.Invalidate("u1")
	if pc.Len() != 0 {
		t.Fatalf("invalidate left the entry behind")
	}
	_, _ = pc.Get(context.Background(), "u1")
	if got := src.callCount(); got != 2 {
		t.Fatalf("expected refetch after invalidation, got %d lookups", got)
	}
}

func TestSweepRemovesExpired(t *testing.T) {
	src := &fakeSource{users: map[string]*domain.Principal{
		"u1": {ID: "u1", IsActive: true},
		"u2": {ID: "u2", IsActive: true},
	}}
	pc, now := newTestCache(src)

	_, _ = pc.Get(context.Background(), "u1")
	*now = now.Add(20 * time.Second)
	_, _ = pc.Get(context.Background(), "u2")

	// u1 is past its TTL, u2 is not.
	*now = now.Add(15 * time.Second)
	if removed := pc.sweep(); removed != 1 {
		t.Fatalf("sweep removed %d entries, want 1", removed)
	}
	if pc.Len() != 1 {
		t.Fatalf("sweep left %d entries, want 1", pc.Len())
	}
}

func TestStartStop(t *testing.T) {
	pc := NewPrincipalCache(&fakeSource{}, time.Second, time.Millisecond)
	pc.Start()
	pc.Stop()
	pc.Stop() // idempotent
}
