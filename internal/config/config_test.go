package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	// Server timeouts / sizes (valid)
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"
	t.Setenv("ENV", "staging")    // will normalize to "development"

	// Logging
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("API_BASE_PATH", "api/v1/") // no leading slash + trailing slash -> "/api/v1"

	// App
	t.Setenv("DB_PATH", "db.sqlite")
	t.Setenv("UPLOAD_BASE_URL", "https://cdn.example.com")

	// Auth
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "12h")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_BOT_SECRET", "hook-secret")
	t.Setenv("TELEGRAM_AUTO_REGISTER", "0")

	// Cache
	t.Setenv("PRINCIPAL_CACHE_TTL", "45s")
	t.Setenv("PRINCIPAL_CACHE_SWEEP", "1m")

	// Rate limiting (use invalids for parse to fall back to defaults)
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("RATE_LIMIT_FAIL_OPEN", "false")
	t.Setenv("BURST_RPS", "x")     // -> default 50.0
	t.Setenv("BURST_SIZE", "nope") // -> default 100

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	// OTEL
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Server
	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" ||
		cfg.Env != "development" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}
	if cfg.Production() {
		t.Fatalf("development config reports production")
	}

	// Logging
	if cfg.LogLevel != "warn" || !cfg.LogPretty || cfg.APIBasePath != "/api/v1" {
		t.Fatalf("logging fields unexpected: %+v", cfg)
	}

	// App
	if cfg.DBPath != "db.sqlite" || cfg.UploadBaseURL != "https://cdn.example.com" {
		t.Fatalf("app fields unexpected: %+v", cfg)
	}

	// Auth
	if cfg.Auth.JWTSecret != "s3cret" ||
		cfg.Auth.TokenTTL != 12*time.Hour ||
		cfg.Auth.BotToken != "123:abc" ||
		cfg.Auth.BotWebhookToken != "hook-secret" ||
		cfg.Auth.TGAutoRegister {
		t.Fatalf("auth fields unexpected: %+v", cfg.Auth)
	}

	// Cache
	if cfg.Cache.TTL != 45*time.Second || cfg.Cache.SweepEvery != time.Minute {
		t.Fatalf("cache fields unexpected: %+v", cfg.Cache)
	}

	// Rate limiting: unparsable knobs keep their defaults.
	if cfg.RateLimit.RedisAddr != "redis:6379" ||
		cfg.RateLimit.FailOpen ||
		cfg.RateLimit.BurstRPS != 50.0 ||
		cfg.RateLimit.Burst != 100 {
		t.Fatalf("rate limit fields unexpected: %+v", cfg.RateLimit)
	}

	// Web protection
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security fields unexpected: %+v", cfg.Security)
	}

	// OTEL
	if !cfg.OTEL.Enabled ||
		cfg.OTEL.Endpoint != "otel:4317" ||
		cfg.OTEL.Insecure ||
		cfg.OTEL.ServiceName != "svc" ||
		cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel fields unexpected: %+v", cfg.OTEL)
	}
}

// --- Load validation failures ---

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"missing jwt secret", "JWT_SECRET", "", "JWT_SECRET"},
		{"bad log level", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"zero burst size", "BURST_SIZE", "0", "BURST_SIZE"},
		{"negative token ttl", "TOKEN_TTL", "-1h", "TOKEN_TTL"},
		{"sample ratio out of range", "OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "s3cret")
			t.Setenv(tc.key, tc.val)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Load() error = %v, want mention of %s", err, tc.want)
			}
		})
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{
		"":        "",
		"/":       "",
		"api":     "/api",
		"/api/":   "/api",
		" /api ":  "/api",
		"/api/v1": "/api/v1",
	}
	for in, want := range cases {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestProduction(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ENV", "production")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Production() {
		t.Fatalf("ENV=production not reported")
	}
}
