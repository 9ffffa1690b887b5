// Package handlers provides HTTP handler implementations for the public API.
//
// This file implements the authentication endpoints: registration, login,
// and the Telegram mini-app credential exchange. Payloads arrive already
// validated by the schema middleware; handlers read the typed value from the
// context and never re-parse the body.
package handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookline-app/bookline-backend/internal/domain"
	"github.com/bookline-app/bookline-backend/internal/http/httperr"
	"github.com/bookline-app/bookline-backend/internal/http/middleware"
	"github.com/bookline-app/bookline-backend/internal/platform"
	"github.com/bookline-app/bookline-backend/internal/schemas"
	"github.com/bookline-app/bookline-backend/internal/services"
)

// initDataMaxAge bounds how old a mini-app login payload may be.
const initDataMaxAge = 24 * time.Hour

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	Auth      *services.AuthService
	BotToken  string
	TGAutoReg bool // create an account on first Telegram login
}

// userView is the public projection of an account returned by auth calls.
type userView struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	AvatarURL     string `json:"avatarUrl,omitempty"`
	LoyaltyPoints int    `json:"loyaltyPoints"`
}

func viewOf(u *domain.User) userView {
	return userView{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          string(u.Role),
		AvatarURL:     u.AvatarURL,
		LoyaltyPoints: u.LoyaltyPoints,
	}
}

// Register creates an account and returns it with an access token.
func (h *AuthHandler) Register(c *gin.Context) error {
	req := middleware.ValidatedBody(c).(*schemas.RegisterRequest)
	u, tok, err := h.Auth.Register(c.Request.Context(), req.Email, req.Password, req.Name, domain.Role(req.Role))
	if err != nil {
		return err
	}
	created(c, gin.H{"user": viewOf(u), "token": tok})
	return nil
}

// Login exchanges credentials for an access token.
func (h *AuthHandler) Login(c *gin.Context) error {
	req := middleware.ValidatedBody(c).(*schemas.LoginRequest)
	u, tok, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	ok(c, gin.H{"user": viewOf(u), "token": tok})
	return nil
}

// telegramUser is the user object embedded in verified init data.
type telegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	PhotoURL  string `json:"photo_url"`
}

// TelegramAuth exchanges verified mini-app init data for an access token.
// The init data signature is checked against the bot token; a failed check
// is a validation error, not an internal one.
func (h *AuthHandler) TelegramAuth(c *gin.Context) error {
	req := middleware.ValidatedBody(c).(*schemas.TelegramAuthRequest)

	values, err := platform.VerifyInitData(req.InitData, h.BotToken, initDataMaxAge, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, platform.ErrMissingInitData):
			httperr.Abort(c, 400, httperr.CodeMissingTelegram, "Telegram init data is required")
		case errors.Is(err, platform.ErrExpiredInitData):
			httperr.Abort(c, 401, httperr.CodeTokenExpired, "Telegram init data has expired")
		default:
			httperr.Abort(c, 401, httperr.CodeAuthRequired, "Telegram init data could not be verified")
		}
		return nil
	}

	var tgu telegramUser
	if raw := values.Get("user"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &tgu); err != nil || tgu.ID == 0 {
			httperr.Abort(c, 400, httperr.CodeMissingTelegram, "Telegram init data carries no user")
			return nil
		}
	} else {
		httperr.Abort(c, 400, httperr.CodeMissingTelegram, "Telegram init data carries no user")
		return nil
	}

	u, tok, err := h.Auth.LoginTelegram(c.Request.Context(), tgu.ID, tgu.FirstName, tgu.Username, tgu.PhotoURL, h.TGAutoReg)
	if err != nil {
		return err
	}
	ok(c, gin.H{"user": viewOf(u), "token": tok})
	return nil
}
