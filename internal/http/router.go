// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// platform classification, sanitization, rate limiting, CORS, and security
// headers, and mounts the platform-aware gating pipeline in front of every
// endpoint.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - One terminal error mapper; no ad-hoc error bodies past it
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/bookline-app/bookline-backend/internal/cache"
	"github.com/bookline-app/bookline-backend/internal/config"
	"github.com/bookline-app/bookline-backend/internal/http/handlers"
	"github.com/bookline-app/bookline-backend/internal/http/middleware"
	"github.com/bookline-app/bookline-backend/internal/payments"
	"github.com/bookline-app/bookline-backend/internal/platform"
	"github.com/bookline-app/bookline-backend/internal/ratelimit"
	"github.com/bookline-app/bookline-backend/internal/repo"
	"github.com/bookline-app/bookline-backend/internal/rules"
	"github.com/bookline-app/bookline-backend/internal/schemas"
	"github.com/bookline-app/bookline-backend/internal/services"
	"github.com/bookline-app/bookline-backend/internal/token"
)

// Deps carries the shared infrastructure the router wires together. The
// caller owns lifecycles (cache sweeper, redis client, DB pool).
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client // nil keeps rate-limit counters in memory
	Cache  *cache.PrincipalCache
	Tokens *token.Manager
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Structured logging with redaction
//  4. Response compression (outermost body writer)
//  5. Recovery: capture panics after logger
//  6. Terminal error mapper (wraps everything below)
//  7. Body size limiter
//  8. Prometheus metrics
//  9. CORS and security headers
//  10. Platform/category classification
//  11. Optional authentication (identity for per-user rate-limit keys)
//  12. Burst guard, then per-(category, platform) rate limits
//  13. Input sanitization
//  14. Bot webhook secret guard
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	production := cfg.Production()

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	// Compression must wrap every middleware that writes a body: Recovery and
	// ErrorMapper emit their envelopes after c.Next(), and those writes have
	// to land in the still-open gzip writer.
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.Recovery())
	r.Use(middleware.ErrorMapper(production))
	r.Use(limitBody(1 << 20))
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	useCORS(r, cfg.CORS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
	}))

	// Identity and gating pipeline.
	auth := &middleware.Authenticator{Tokens: deps.Tokens, Cache: deps.Cache, DB: deps.DB}
	r.Use(middleware.Classify())
	r.Use(auth.Optional())

	bg := middleware.NewBurstGuard(cfg.RateLimit.BurstRPS, cfg.RateLimit.Burst)
	r.Use(bg.Handler())

	rl := middleware.NewRateLimiter(counterStore(deps.Redis))
	rl.FailOpen = cfg.RateLimit.FailOpen
	r.Use(rl.Limit())

	r.Use(middleware.SanitizeInput())
	r.Use(middleware.TelegramGuard(cfg.Auth.BotWebhookToken))

	// Fallback: unmatched routes and methods both answer the uniform 404.
	r.NoRoute(middleware.NotFoundHandler(production))

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← repo/db/cache
	authSvc := &services.AuthService{DB: deps.DB, Tokens: deps.Tokens, Invalidate: deps.Cache.Invalidate}
	bookSvc := &services.BookingService{DB: deps.DB}
	checker := &rules.Checker{DB: deps.DB, Bookings: bookSvc}

	ah := &handlers.AuthHandler{Auth: authSvc, BotToken: cfg.Auth.BotToken, TGAutoReg: cfg.Auth.TGAutoRegister}
	bh := &handlers.BookingHandler{Bookings: bookSvc}
	sh := &handlers.ServiceHandler{DB: deps.DB}
	ph := &handlers.PaymentHandler{Gateway: payments.SimGateway{}, Bookings: bookSvc}
	rh := &handlers.ReviewHandler{DB: deps.DB}
	uh := &handlers.UploadHandler{BaseURL: cfg.UploadBaseURL}
	usr := &handlers.UserHandler{Auth: authSvc}

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Auth
		api.POST("/auth/register",
			middleware.ValidateRequest(schemas.NameRegister, middleware.InBody),
			handlers.Wrap(ah.Register))
		api.POST("/auth/login",
			middleware.ValidateRequest(schemas.NameLogin, middleware.InBody),
			handlers.Wrap(ah.Login))
		api.POST("/auth/telegram",
			middleware.RequireMiniAppData(),
			middleware.ValidateRequest(schemas.NameTelegramAuth, middleware.InBody),
			handlers.Wrap(ah.TelegramAuth))

		// Catalog. Search is public with soft identity: anonymous callers get
		// an explicit nil principal so the handler can read the key
		// unconditionally.
		api.GET("/search/services",
			auth.Soft(),
			middleware.ValidateRequest(schemas.NameSearchServices, middleware.InQuery),
			handlers.Wrap(sh.Search))
		api.POST("/services",
			auth.Required(), middleware.RequireSpecialist(),
			middleware.ValidateRequest(schemas.NameCreateService, middleware.InBody),
			handlers.Wrap(sh.Create))

		// Bookings
		api.POST("/bookings",
			auth.Required(),
			middleware.ValidateRequest(schemas.NameCreateBooking, middleware.InBody),
			middleware.ValidateBusinessRules(checker, rules.RuleBookingAvailability),
			handlers.Wrap(bh.Create))
		api.GET("/bookings",
			auth.Required(),
			handlers.Wrap(bh.List))
		api.GET("/bookings/:bookingId",
			auth.Required(),
			middleware.ValidateRequest(schemas.NameBookingParams, middleware.InParams),
			auth.RequireOwnership(repo.ParamBookingID),
			handlers.Wrap(bh.Get))
		api.DELETE("/bookings/:bookingId",
			auth.Required(),
			middleware.ValidateRequest(schemas.NameBookingParams, middleware.InParams),
			auth.RequireOwnership(repo.ParamBookingID),
			middleware.ValidateBusinessRules(checker, rules.RuleModificationWindow),
			handlers.Wrap(bh.Cancel))
		api.GET("/bookings/:bookingId/reviews",
			auth.Required(),
			middleware.ValidateRequest(schemas.NameBookingParams, middleware.InParams),
			auth.RequireOwnership(repo.ParamBookingID),
			handlers.Wrap(rh.ListForBooking))

		// Reviews
		api.POST("/reviews",
			auth.Required(), middleware.RequireFeature(platform.FeatureReviews),
			middleware.ValidateRequest(schemas.NameCreateReview, middleware.InBody),
			middleware.ValidateBusinessRules(checker, rules.RuleReviewEligibility),
			handlers.Wrap(rh.Create))

		// Payments
		api.POST("/payments",
			auth.Required(), middleware.RequireFeature(platform.FeatureOnlinePayment),
			middleware.ValidateRequest(schemas.NameCreatePayment, middleware.InBody),
			middleware.ValidateBusinessRules(checker, rules.RulePaymentAmount),
			handlers.Wrap(ph.Create))

		// Uploads
		api.POST("/upload",
			auth.Required(), middleware.RequireFeature(platform.FeatureFileUpload),
			middleware.ValidateRequest(schemas.NameUploadFile, middleware.InBody),
			handlers.Wrap(uh.Register))

		// Account
		api.GET("/users/me",
			auth.Required(),
			handlers.Wrap(usr.Me))
		api.PUT("/users/me",
			auth.Required(), middleware.RequireFeature(platform.FeatureProfileEditing),
			middleware.ValidateRequest(schemas.NameUpdateProfile, middleware.InBody),
			handlers.Wrap(usr.UpdateProfile))
		api.DELETE("/users/me",
			auth.Required(),
			handlers.Wrap(usr.Deactivate))
	}
}

// counterStore picks the rate-limit counter backend: Redis when configured,
// with an in-memory fallback for Redis outages; memory-only otherwise.
func counterStore(client *redis.Client) ratelimit.CounterStore {
	if client == nil {
		return ratelimit.NewMemoryStore()
	}
	return &ratelimit.FallbackStore{
		Primary:   ratelimit.NewRedisStore(client),
		Secondary: ratelimit.NewMemoryStore(),
	}
}

// useCORS applies the CORS posture: allow-all when no origins are configured,
// an allowlist otherwise.
func useCORS(r *gin.Engine, cc config.CORSConfig) {
	base := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			platform.HeaderTelegramInitData, platform.HeaderTelegramBotToken,
		},
		ExposeHeaders: []string{
			"X-Request-ID", "Content-Length",
			"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset",
		},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cc.AllowedOrigins) == 0 {
		base.AllowAllOrigins = true
	} else {
		base.AllowOrigins = cc.AllowedOrigins
	}
	r.Use(cors.New(base))
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
