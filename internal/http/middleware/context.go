// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file centralizes the Gin context keys through which the pipeline
// stages hand results to each other (classified platform/category, the
// authenticated principal, validated payloads, the sanitized body) and the
// typed accessors around them. Stages communicate only through these keys;
// none of them mutates the request object to pass data downstream.
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/bookline-app/bookline-backend/internal/domain"
	"github.com/bookline-app/bookline-backend/internal/platform"
)

// Gin context keys. Unexported string constants; external packages use the
// accessor functions.
const (
	ctxKeyRequestID = "requestID"
	ctxKeyLogger    = "logger"
	ctxKeyPlatform  = "platform"
	ctxKeyCategory  = "category"
	ctxKeyPrincipal = "principal"
	ctxKeyUserID    = "userID"
	ctxKeyBody      = "sanitizedBody"
	ctxKeyValidated = "validated:"
)

// Classify tags every request with its platform and endpoint category. It is
// the first domain-aware stage of the chain; the rate limiter, validators,
// and feature gates read the tags instead of re-deriving them.
func Classify() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxKeyPlatform, platform.ClassifyRequest(c.Request))
		c.Set(ctxKeyCategory, platform.ClassifyPath(c.Request.URL.Path))
		c.Next()
	}
}

// PlatformFrom returns the classified platform, defaulting to web when the
// classifier has not run (e.g. in isolated handler tests).
func PlatformFrom(c *gin.Context) platform.Platform {
	if v, ok := c.Get(ctxKeyPlatform); ok {
		if p, ok := v.(platform.Platform); ok {
			return p
		}
	}
	return platform.PlatformWeb
}

// CategoryFrom returns the classified endpoint category, defaulting to
// default.
func CategoryFrom(c *gin.Context) platform.Category {
	if v, ok := c.Get(ctxKeyCategory); ok {
		if cat, ok := v.(platform.Category); ok {
			return cat
		}
	}
	return platform.CategoryDefault
}

// PrincipalFrom returns the authenticated principal, or nil. Soft
// authentication stores an explicit nil; callers must treat absent and nil
// identically.
func PrincipalFrom(c *gin.Context) *domain.Principal {
	if v, ok := c.Get(ctxKeyPrincipal); ok {
		if p, ok := v.(*domain.Principal); ok {
			return p
		}
	}
	return nil
}

// UserIDFrom returns the authenticated user id, or "".
func UserIDFrom(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyUserID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
