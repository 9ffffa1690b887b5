// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the platform-aware request limiter: a fixed-window
// counter per (endpoint category, platform, caller) backed by a shared
// counter store (Redis in production, with an in-process degraded fallback),
// plus a process-local token-bucket burst guard for edge-level abuse control.
//
// Policy:
//   - Limits come from the static policy table in internal/ratelimit.
//   - The caller identity is the authenticated user id when present, else
//     the client IP.
//   - The limiter FAILS OPEN: when the counter store errors, the request is
//     allowed through and the failure is logged. Availability is explicitly
//     prioritized over strict enforcement here; toggle via FailOpen only in
//     tests.
package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/bookline-app/bookline-backend/internal/http/httperr"
	"github.com/bookline-app/bookline-backend/internal/platform"
	"github.com/bookline-app/bookline-backend/internal/ratelimit"
)

// Rate-limit response headers, set on every limited route (success or 429).
const (
	headerRateLimit     = "X-RateLimit-Limit"
	headerRateRemaining = "X-RateLimit-Remaining"
	headerRateReset     = "X-RateLimit-Reset"
)

// RateLimiter enforces the per-(category, platform, caller) policies.
type RateLimiter struct {
	Store ratelimit.CounterStore

	// FailOpen preserves availability when the counter store is down:
	// errors are logged and the request proceeds uncounted. This is a
	// deliberate policy, not incidental error swallowing.
	FailOpen bool

	// now is an injectable clock for header tests.
	now func() time.Time
}

// NewRateLimiter constructs a fail-open limiter over the given store.
func NewRateLimiter(store ratelimit.CounterStore) *RateLimiter {
	return &RateLimiter{Store: store, FailOpen: true, now: time.Now}
}

// Limit returns the middleware for routes in their classified category. An
// optional category override takes precedence over the path-derived one
// (used where the mounting point does not reflect the business purpose).
func (rl *RateLimiter) Limit(override ...platform.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat := CategoryFrom(c)
		if len(override) > 0 {
			cat = override[0]
		}
		plat := PlatformFrom(c)
		pol := ratelimit.PolicyFor(cat, plat)

		ident := UserIDFrom(c)
		if ident == "" {
			ident = c.ClientIP()
		}
		key := ratelimit.Key(cat, plat, ident)

		count, ttl, err := rl.Store.Incr(c.Request.Context(), key, pol.Window)
		if err != nil {
			if rl.FailOpen {
				LoggerFrom(c).Error().Err(err).
					Str("key", key).
					Msg("rate limit store unavailable; failing open")
				c.Next()
				return
			}
			httperr.Abort(c, 500, httperr.CodeInternal, "Internal server error")
			return
		}

		remaining := int64(pol.Max) - count
		if remaining < 0 {
			remaining = 0
		}
		h := c.Writer.Header()
		h.Set(headerRateLimit, strconv.Itoa(pol.Max))
		h.Set(headerRateRemaining, strconv.FormatInt(remaining, 10))
		h.Set(headerRateReset, rl.now().Add(ttl).UTC().Format(time.RFC3339))

		if count > int64(pol.Max) {
			retryAfter := int(math.Ceil(ttl.Seconds()))
			LoggerFrom(c).Warn().
				Str("key", key).
				Int64("count", count).
				Int("max", pol.Max).
				Msg("rate limit exceeded")
			httperr.AbortRateLimited(c, "Too many requests, please try again later", retryAfter)
			return
		}
		c.Next()
	}
}

// visitor holds one token bucket and the last time it was seen, for
// opportunistic eviction of idle buckets.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// BurstGuard is a process-local token-bucket limiter applied ahead of the
// policy limiter. It bounds instantaneous burst per caller regardless of
// category, protecting the counter store itself from floods. Buckets are
// created on demand; idle buckets are evicted after a TTL during lookups.
//
// This guard is intentionally process-local; cross-instance fairness is the
// policy limiter's job.
type BurstGuard struct {
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[string]*visitor
	ttl      time.Duration
	lookups  uint64
}

// NewBurstGuard constructs a guard allowing rps tokens per second with the
// given burst size (coerced to >= 1).
func NewBurstGuard(rps float64, burst int) *BurstGuard {
	if burst <= 0 {
		burst = 1
	}
	return &BurstGuard{
		rps:      rate.Limit(rps),
		burst:    burst,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
	}
}

// bucket returns (creating if needed) the limiter for key, running the idle
// eviction pass every ~5000 lookups before the fetch so stale buckets are
// dropped even when re-requested.
func (bg *BurstGuard) bucket(key string) *rate.Limiter {
	now := time.Now()

	bg.mu.Lock()
	bg.lookups++
	if bg.lookups >= 5000 {
		for k, v := range bg.visitors {
			if now.Sub(v.lastSeen) >= bg.ttl {
				delete(bg.visitors, k)
			}
		}
		bg.lookups = 0
	}

	if v, ok := bg.visitors[key]; ok {
		v.lastSeen = now
		lim := v.limiter
		bg.mu.Unlock()
		return lim
	}
	lim := rate.NewLimiter(bg.rps, bg.burst)
	bg.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	bg.mu.Unlock()
	return lim
}

// Handler returns the burst-guard middleware, keyed by user id when
// authenticated and client IP otherwise. Rejections carry Retry-After only:
// the X-RateLimit-* headers describe fixed-window budgets and belong to the
// policy limiter; a token bucket has no window to report.
func (bg *BurstGuard) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := UserIDFrom(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		} else {
			key = "user:" + key
		}
		if !bg.bucket(key).Allow() {
			c.Header("Retry-After", "1")
			httperr.AbortRateLimited(c, "Too many requests, please try again later", 1)
			return
		}
		c.Next()
	}
}
