// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file guards the Telegram surfaces: requests classified as bot traffic
// must present the configured webhook secret token, and mini-app routes can
// demand the signed init-data payload.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookline-app/bookline-backend/internal/http/httperr"
	"github.com/bookline-app/bookline-backend/internal/platform"
)

// TelegramGuard returns middleware that authenticates bot-platform requests
// against the configured webhook secret. Non-bot platforms pass through
// untouched; a bot request with a wrong or missing secret is refused with
// INVALID_BOT_TOKEN.
func TelegramGuard(botSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if PlatformFrom(c) != platform.PlatformTelegramBot {
			c.Next()
			return
		}
		presented := c.GetHeader(platform.HeaderTelegramBotToken)
		if err := platform.VerifyBotToken(presented, botSecret); err != nil {
			LoggerFrom(c).Warn().
				Str("remote_ip", c.ClientIP()).
				Msg("bot request with invalid secret token")
			httperr.Abort(c, http.StatusUnauthorized, httperr.CodeInvalidBotToken,
				"Invalid bot token")
			return
		}
		c.Next()
	}
}

// RequireMiniAppData returns middleware for routes that only make sense with
// the mini-app init data present (the signature is verified later by the
// telegram auth handler). Missing data is refused with MISSING_TELEGRAM_DATA.
func RequireMiniAppData() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(platform.HeaderTelegramInitData) == "" {
			httperr.Abort(c, http.StatusBadRequest, httperr.CodeMissingTelegram,
				"Telegram init data is required")
			return
		}
		c.Next()
	}
}
