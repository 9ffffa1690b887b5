// Package handlers — account endpoints for the authenticated user.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/bookline-app/bookline-backend/internal/http/middleware"
	"github.com/bookline-app/bookline-backend/internal/schemas"
	"github.com/bookline-app/bookline-backend/internal/services"
)

// UserHandler serves the /users/me endpoints.
type UserHandler struct {
	Auth *services.AuthService
}

// Me returns the cached principal snapshot for the authenticated user.
func (h *UserHandler) Me(c *gin.Context) error {
	ok(c, gin.H{"user": middleware.PrincipalFrom(c)})
	return nil
}

// UpdateProfile patches the authenticated user's profile and invalidates the
// cached principal so the change is visible on the next request.
func (h *UserHandler) UpdateProfile(c *gin.Context) error {
	req := middleware.ValidatedBody(c).(*schemas.UpdateProfileRequest)
	id := middleware.UserIDFrom(c)
	if err := h.Auth.UpdateProfile(c.Request.Context(), id, req.Name, req.AvatarURL); err != nil {
		return err
	}
	ok(c, gin.H{"updated": true})
	return nil
}

// Deactivate disables the authenticated user's account. Outstanding tokens
// stop working as soon as the cached principal is invalidated.
func (h *UserHandler) Deactivate(c *gin.Context) error {
	if err := h.Auth.Deactivate(c.Request.Context(), middleware.UserIDFrom(c)); err != nil {
		return err
	}
	ok(c, gin.H{"deactivated": true})
	return nil
}
