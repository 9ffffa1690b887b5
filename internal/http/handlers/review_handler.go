// Package handlers — review endpoints. Eligibility (completed booking, own
// booking, no duplicate) runs in the business-rule middleware; the duplicate
// unique index is the backstop the error mapper turns into a 409.
package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookline-app/bookline-backend/internal/http/middleware"
	"github.com/bookline-app/bookline-backend/internal/repo"
	"github.com/bookline-app/bookline-backend/internal/schemas"
)

// ReviewHandler serves the /reviews endpoints.
type ReviewHandler struct {
	DB *gorm.DB
}

// Create rates a completed booking on behalf of the authenticated customer.
func (h *ReviewHandler) Create(c *gin.Context) error {
	req := middleware.ValidatedBody(c).(*schemas.CreateReviewRequest)
	r, err := repo.CreateReview(c.Request.Context(), h.DB,
		req.BookingID, middleware.UserIDFrom(c), req.Rating, req.Comment)
	if err != nil {
		return err
	}
	created(c, gin.H{"review": r})
	return nil
}

// ListForBooking returns the reviews on one booking.
func (h *ReviewHandler) ListForBooking(c *gin.Context) error {
	params := middleware.Validated(c, middleware.InParams).(*schemas.BookingParams)
	items, err := repo.ListReviewsForBooking(c.Request.Context(), h.DB, params.BookingID)
	if err != nil {
		return err
	}
	ok(c, gin.H{"reviews": items})
	return nil
}
