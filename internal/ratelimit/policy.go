// Package ratelimit implements fixed-window request counting for the HTTP
// gate: a static policy table keyed by (endpoint category, platform), a
// counter-store abstraction with a Redis implementation and an in-process
// degraded fallback, and the composite keying scheme used by the middleware.
package ratelimit

import (
	"fmt"
	"time"

	"github.com/bookline-app/bookline-backend/internal/platform"
)

// Policy is a fixed-window limit: at most Max requests per Window.
type Policy struct {
	Window time.Duration
	Max    int
}

// policyTable holds the static limits per (category, platform). Immutable at
// runtime; consulted on every request. Auth endpoints are strict because they
// are credential-guessing targets; Telegram surfaces get tighter budgets than
// web because bot traffic amplifies quickly.
var policyTable = map[platform.Category]map[platform.Platform]Policy{
	platform.CategoryAuth: {
		platform.PlatformWeb:             {Window: 15 * time.Minute, Max: 5},
		platform.PlatformTelegramBot:     {Window: time.Minute, Max: 10},
		platform.PlatformTelegramMiniApp: {Window: time.Minute, Max: 8},
	},
	platform.CategorySearch: {
		platform.PlatformWeb:             {Window: time.Minute, Max: 30},
		platform.PlatformTelegramBot:     {Window: time.Minute, Max: 20},
		platform.PlatformTelegramMiniApp: {Window: time.Minute, Max: 25},
	},
	platform.CategoryBooking: {
		platform.PlatformWeb:             {Window: time.Minute, Max: 10},
		platform.PlatformTelegramBot:     {Window: time.Minute, Max: 5},
		platform.PlatformTelegramMiniApp: {Window: time.Minute, Max: 8},
	},
	platform.CategoryUpload: {
		platform.PlatformWeb:             {Window: time.Hour, Max: 20},
		platform.PlatformTelegramBot:     {Window: time.Hour, Max: 5},
		platform.PlatformTelegramMiniApp: {Window: time.Hour, Max: 10},
	},
	platform.CategoryPayment: {
		platform.PlatformWeb:             {Window: time.Minute, Max: 5},
		platform.PlatformTelegramBot:     {Window: time.Minute, Max: 3},
		platform.PlatformTelegramMiniApp: {Window: time.Minute, Max: 5},
	},
	platform.CategoryDefault: {
		platform.PlatformWeb:             {Window: time.Minute, Max: 60},
		platform.PlatformTelegramBot:     {Window: time.Minute, Max: 30},
		platform.PlatformTelegramMiniApp: {Window: time.Minute, Max: 40},
	},
}

// PolicyFor returns the limit for a (category, platform) pair, falling back
// to the default category for the platform when the category is unlisted,
// and to a conservative web default as the last resort.
func PolicyFor(cat platform.Category, p platform.Platform) Policy {
	if byPlatform, ok := policyTable[cat]; ok {
		if pol, ok := byPlatform[p]; ok {
			return pol
		}
	}
	if pol, ok := policyTable[platform.CategoryDefault][p]; ok {
		return pol
	}
	return policyTable[platform.CategoryDefault][platform.PlatformWeb]
}

// Key builds the composite counter key for one caller on one route class.
// identifier is the authenticated user id when available, else the caller IP.
func Key(cat platform.Category, p platform.Platform, identifier string) string {
	return fmt.Sprintf("rl:%s:%s:%s", cat, p, identifier)
}
