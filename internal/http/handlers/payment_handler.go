// Package handlers — payment endpoints. Gateway failures are returned as-is;
// the terminal error mapper owns their classification so provider internals
// never leak into responses.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookline-app/bookline-backend/internal/http/httperr"
	"github.com/bookline-app/bookline-backend/internal/http/middleware"
	"github.com/bookline-app/bookline-backend/internal/payments"
	"github.com/bookline-app/bookline-backend/internal/schemas"
	"github.com/bookline-app/bookline-backend/internal/services"
)

// PaymentHandler serves the /payments endpoints.
type PaymentHandler struct {
	Gateway  payments.Charger
	Bookings *services.BookingService
}

// Create charges a booking. The booking id travels in the body rather than
// the path, so the customer check happens here instead of the ownership
// middleware. A missing booking is reported as access denied, the same as a
// foreign one.
func (h *PaymentHandler) Create(c *gin.Context) error {
	req := middleware.ValidatedBody(c).(*schemas.CreatePaymentRequest)

	b, err := h.Bookings.Get(c.Request.Context(), req.BookingID)
	if err != nil || b.CustomerID != middleware.UserIDFrom(c) {
		if err == nil || errors.Is(err, services.ErrBookingNotFound) {
			httperr.Abort(c, http.StatusForbidden, httperr.CodeAccessDenied,
				"You do not have access to this booking")
			return nil
		}
		return err
	}

	ch, err := h.Gateway.Charge(c.Request.Context(), req.BookingID, req.PaymentMethodID, req.AmountCents)
	if err != nil {
		return err
	}
	created(c, gin.H{"charge": ch})
	return nil
}
