// Package handlers — booking endpoints. Creation accepts platform-specific
// payload shapes (the schema registry binds a different struct per surface);
// the handler normalizes them into the common service call.
package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookline-app/bookline-backend/internal/http/middleware"
	"github.com/bookline-app/bookline-backend/internal/schemas"
	"github.com/bookline-app/bookline-backend/internal/services"
	"github.com/bookline-app/bookline-backend/internal/utils"
)

// BookingHandler serves the /bookings endpoints.
type BookingHandler struct {
	Bookings *services.BookingService
}

// Create places a booking for the authenticated customer. The bound payload
// type depends on the request's platform; the extra mini-app/bot fields are
// echoed back so those clients can route their own follow-ups.
func (h *BookingHandler) Create(c *gin.Context) error {
	var (
		serviceID string
		startsAt  time.Time
		notes     string
		extra     gin.H
	)

	switch req := middleware.ValidatedBody(c).(type) {
	case *schemas.CreateBookingRequest:
		serviceID, startsAt, notes = req.ServiceID, req.StartsAt, req.Notes
	case *schemas.MiniAppCreateBookingRequest:
		serviceID, startsAt, notes = req.ServiceID, req.StartsAt, req.Notes
		extra = gin.H{"queryId": req.QueryID}
	case *schemas.BotCreateBookingRequest:
		serviceID, startsAt = req.ServiceID, req.StartsAt
		extra = gin.H{"chatId": req.ChatID}
	default:
		return fmt.Errorf("handlers: unexpected booking payload type %T", req)
	}

	b, err := h.Bookings.Create(c.Request.Context(), middleware.UserIDFrom(c), serviceID, startsAt, notes)
	if err != nil {
		return err
	}
	body := gin.H{"booking": b}
	for k, v := range extra {
		body[k] = v
	}
	created(c, body)
	return nil
}

// Get returns one booking. Ownership is enforced by middleware before the
// handler runs.
func (h *BookingHandler) Get(c *gin.Context) error {
	params := middleware.Validated(c, middleware.InParams).(*schemas.BookingParams)
	b, err := h.Bookings.Get(c.Request.Context(), params.BookingID)
	if err != nil {
		return err
	}
	ok(c, gin.H{"booking": b})
	return nil
}

// List returns the authenticated user's bookings, newest first.
func (h *BookingHandler) List(c *gin.Context) error {
	offset := utils.AtoiDefault(c.Query("offset"), 0)
	limit := utils.AtoiDefault(c.Query("limit"), 20)
	offset, limit = utils.ClampPage(offset, limit, 20, 100)

	items, err := h.Bookings.ListForUser(c.Request.Context(), middleware.UserIDFrom(c), offset, limit)
	if err != nil {
		return err
	}
	ok(c, gin.H{"bookings": items, "offset": offset, "limit": limit})
	return nil
}

// Cancel transitions a booking to cancelled. The modification-window rule
// runs in middleware; by the time we are here the transition is allowed.
func (h *BookingHandler) Cancel(c *gin.Context) error {
	params := middleware.Validated(c, middleware.InParams).(*schemas.BookingParams)
	if err := h.Bookings.Cancel(c.Request.Context(), params.BookingID); err != nil {
		return err
	}
	ok(c, gin.H{"cancelled": true, "bookingId": params.BookingID})
	return nil
}
