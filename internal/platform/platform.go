// Package platform classifies incoming requests by client surface and by
// endpoint category. Both classifications are pure, total functions over
// request metadata: they never fail and always return one of the enumerated
// tags. The resulting pair selects rate-limit policies, schema namespaces,
// and feature availability for the rest of the middleware chain.
package platform

import (
	"net/http"
	"strings"
)

// Platform tags the client surface a request originates from.
type Platform string

// Enumerated platforms. The zero-information default is PlatformWeb.
const (
	PlatformWeb             Platform = "web"
	PlatformTelegramBot     Platform = "telegram_bot"
	PlatformTelegramMiniApp Platform = "telegram_miniapp"
)

// Category buckets a route by coarse business purpose. Categories select
// rate-limit policies; they are intentionally broader than individual routes.
type Category string

// Enumerated endpoint categories.
const (
	CategoryAuth    Category = "auth"
	CategorySearch  Category = "search"
	CategoryBooking Category = "booking"
	CategoryUpload  Category = "upload"
	CategoryPayment Category = "payment"
	CategoryDefault Category = "default"
)

// Headers consumed for platform detection. The mini-app header carries the
// signed Telegram WebApp init data; the bot header carries the secret token
// Telegram echoes on webhook calls.
const (
	HeaderTelegramInitData = "X-Telegram-Init-Data"
	HeaderTelegramBotToken = "X-Telegram-Bot-Api-Secret-Token"
)

// ClassifyRequest returns the platform tag for an HTTP request.
//
// Detection order (first match wins):
//  1. mini-app init-data header present → telegram_miniapp
//  2. bot secret-token header present, or "Telegram" in the user agent
//     → telegram_bot
//  3. otherwise → web
func ClassifyRequest(r *http.Request) Platform {
	if r == nil {
		return PlatformWeb
	}
	if r.Header.Get(HeaderTelegramInitData) != "" {
		return PlatformTelegramMiniApp
	}
	if r.Header.Get(HeaderTelegramBotToken) != "" ||
		strings.Contains(r.Header.Get("User-Agent"), "Telegram") {
		return PlatformTelegramBot
	}
	return PlatformWeb
}

// ClassifyPath returns the endpoint category for a URL path.
//
// Matching is substring-based in a fixed priority order (auth, search,
// booking, upload, payment); when a path matches several groups the earliest
// wins, so an upload endpoint nested under a booking route counts as a
// booking.
func ClassifyPath(path string) Category {
	switch {
	case strings.Contains(path, "/auth/"):
		return CategoryAuth
	case strings.Contains(path, "/search/"):
		return CategorySearch
	case strings.Contains(path, "/bookings/"):
		return CategoryBooking
	case strings.Contains(path, "/upload") || strings.Contains(path, "/files/"):
		return CategoryUpload
	case strings.Contains(path, "/payment"):
		return CategoryPayment
	default:
		return CategoryDefault
	}
}

// All enumerated platforms, in a stable order. Used to build policy and
// feature tables and to validate configuration at startup.
func AllPlatforms() []Platform {
	return []Platform{PlatformWeb, PlatformTelegramBot, PlatformTelegramMiniApp}
}

// AllCategories lists the enumerated endpoint categories in a stable order.
func AllCategories() []Category {
	return []Category{
		CategoryAuth, CategorySearch, CategoryBooking,
		CategoryUpload, CategoryPayment, CategoryDefault,
	}
}
