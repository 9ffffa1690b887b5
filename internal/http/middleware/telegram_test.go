package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/bookline-app/bookline-backend/internal/http/httperr"
	"github.com/bookline-app/bookline-backend/internal/platform"
)

func guardedEngine(botSecret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Classify(), TelegramGuard(botSecret))
	r.GET("/any", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestTelegramGuard(t *testing.T) {
	r := guardedEngine("hook-secret")

	get := func(secret string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/any", nil)
		if secret != "" {
			req.Header.Set(platform.HeaderTelegramBotToken, secret)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	// Non-bot traffic passes untouched.
	if w := get(""); w.Code != 200 {
		t.Fatalf("web: %d", w.Code)
	}
	// The right webhook secret authenticates the bot surface.
	if w := get("hook-secret"); w.Code != 200 {
		t.Fatalf("valid secret: %d %s", w.Code, w.Body.String())
	}
	// A wrong secret is refused.
	w := get("wrong")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong secret: %d", w.Code)
	}
	if got := errCode(t, w); got != httperr.CodeInvalidBotToken {
		t.Fatalf("code = %q", got)
	}

	// With no secret configured every bot request is refused.
	r = guardedEngine("")
	req := httptest.NewRequest(http.MethodGet, "/any", nil)
	req.Header.Set(platform.HeaderTelegramBotToken, "anything")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unconfigured secret: %d", w.Code)
	}
}

func TestRequireMiniAppData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Classify())
	r.POST("/auth/telegram", RequireMiniAppData(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/telegram", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing init data: %d", w.Code)
	}
	if got := errCode(t, w); got != httperr.CodeMissingTelegram {
		t.Fatalf("code = %q", got)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/telegram", nil)
	req.Header.Set(platform.HeaderTelegramInitData, "query_id=x&hash=y")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("with init data: %d %s", w.Code, w.Body.String())
	}
}
