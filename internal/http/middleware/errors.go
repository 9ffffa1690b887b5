// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the terminal error mapper: the single point of truth
// for translating every error that escapes a handler into the uniform JSON
// envelope. Nothing below it writes ad-hoc error responses.
//
// The mapper classifies, in order:
//  1. ORM constraint errors (duplicate key, missing row, bad reference,
//     null violation) into the narrowest caller-fault status;
//  2. named validation errors (httperr.ValidationError);
//  3. token errors (malformed vs expired);
//  4. payment-gateway errors, sub-dispatched by exact provider type;
//  5. service-level sentinels;
//  6. anything else as a generic 500.
//
// Messages are environment-aware: development responses carry detail to aid
// debugging, production responses never leak engine internals, constraint
// names, or provider metadata. This branching is first-class, tested
// behavior.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/bookline-app/bookline-backend/internal/http/httperr"
	"github.com/bookline-app/bookline-backend/internal/payments"
	"github.com/bookline-app/bookline-backend/internal/redact"
	"github.com/bookline-app/bookline-backend/internal/services"
)

// mapped is one resolved classification.
type mapped struct {
	status  int
	code    string
	message string
	details any
}

// ErrorMapper returns the terminal middleware. production selects the
// redacted message set. The mapper is stateless: it never retries and never
// re-throws.
func ErrorMapper(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		m := classify(err, production)

		logMapped(c, err, m)

		env := httperr.New(c, m.code, m.message)
		env.Error.Details = m.details
		c.JSON(m.status, env)
	}
}

// classify resolves an error to (status, code, message, details) per the
// decision table. Order matters; the first matching family wins.
func classify(err error, production bool) mapped {
	// 1) ORM errors.
	if m, ok := classifyORM(err, production); ok {
		return m
	}

	// 2) Named validation error.
	var verr *httperr.ValidationError
	if errors.As(err, &verr) {
		return mapped{
			status:  http.StatusBadRequest,
			code:    httperr.CodeValidation,
			message: pick(production, "Validation failed", verr.Message),
			details: verr.Details,
		}
	}

	// 3) Token errors.
	if errors.Is(err, jwt.ErrTokenExpired) {
		return mapped{http.StatusUnauthorized, httperr.CodeTokenExpired, "Token has expired", nil}
	}
	if isTokenError(err) {
		return mapped{http.StatusUnauthorized, httperr.CodeAuthRequired, "Authentication required", nil}
	}

	// 4) Payment gateway family, sub-dispatched by exact type.
	if ge, ok := payments.IsGatewayError(err); ok {
		switch ge.Type {
		case payments.TypeCardError:
			return mapped{
				status:  http.StatusBadRequest,
				code:    httperr.CodePaymentFailed,
				message: pick(production, "Your card could not be charged, please try another payment method", ge.Message),
			}
		case payments.TypeRateLimitError:
			return mapped{http.StatusTooManyRequests, httperr.CodeRateLimited,
				"Too many payment attempts, please try again later", nil}
		case payments.TypeInvalidRequestError:
			return mapped{http.StatusBadRequest, httperr.CodeValidation,
				pick(production, "Invalid payment request", ge.Message), nil}
		default:
			// API, connection, and provider-auth errors.
			return mapped{http.StatusInternalServerError, httperr.CodePaymentFailed,
				"Payment service is temporarily unavailable", nil}
		}
	}

	// 5) Service-level sentinels.
	if m, ok := classifyService(err, production); ok {
		return m
	}

	// 6) Fallback.
	return mapped{
		status:  http.StatusInternalServerError,
		code:    httperr.CodeInternal,
		message: pick(production, "Internal server error", err.Error()),
	}
}

// classifyORM maps GORM sentinels and engine message patterns to the
// narrowest caller-fault status. Production messages stay generic; dev
// messages carry the engine text.
func classifyORM(err error, production bool) (mapped, bool) {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateMessage(err):
		return mapped{http.StatusConflict, httperr.CodeDuplicate,
			pick(production, "Resource already exists", err.Error()), nil}, true

	case errors.Is(err, gorm.ErrRecordNotFound):
		return mapped{http.StatusNotFound, httperr.CodeNotFound,
			"Resource not found", nil}, true

	case errors.Is(err, gorm.ErrForeignKeyViolated) || isForeignKeyMessage(err):
		return mapped{http.StatusBadRequest, httperr.CodeValidation,
			pick(production, "Invalid reference to a related resource", err.Error()), nil}, true

	case isNotNullMessage(err):
		return mapped{http.StatusBadRequest, httperr.CodeValidation,
			pick(production, "A required field is missing", err.Error()), nil}, true

	case errors.Is(err, gorm.ErrInvalidData) ||
		errors.Is(err, gorm.ErrInvalidField) ||
		errors.Is(err, gorm.ErrModelValueRequired):
		return mapped{http.StatusBadRequest, httperr.CodeValidation,
			pick(production, "Invalid query parameters", err.Error()), nil}, true

	case errors.Is(err, gorm.ErrInvalidTransaction) ||
		errors.Is(err, gorm.ErrInvalidDB) ||
		errors.Is(err, gorm.ErrRegistered) ||
		isEngineMessage(err):
		return mapped{http.StatusInternalServerError, httperr.CodeDatabase,
			pick(production, "Database error", err.Error()), nil}, true
	}
	return mapped{}, false
}

// classifyService maps the business sentinels services raise.
func classifyService(err error, production bool) (mapped, bool) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return mapped{http.StatusUnauthorized, httperr.CodeAuthRequired,
			"Invalid email or password", nil}, true
	case errors.Is(err, services.ErrAccountDisabled):
		return mapped{http.StatusUnauthorized, httperr.CodeAccessDenied,
			"Account is deactivated", nil}, true
	case errors.Is(err, services.ErrEmailTaken):
		return mapped{http.StatusConflict, httperr.CodeDuplicate,
			"Email is already registered", nil}, true
	case errors.Is(err, services.ErrBookingNotFound),
		errors.Is(err, services.ErrServiceNotFound):
		return mapped{http.StatusNotFound, httperr.CodeNotFound,
			"Resource not found", nil}, true
	case errors.Is(err, services.ErrSlotTaken),
		errors.Is(err, services.ErrServiceInactive),
		errors.Is(err, services.ErrPastStartTime):
		return mapped{http.StatusBadRequest, httperr.CodeBusinessRule,
			pick(production, "Booking request cannot be fulfilled", err.Error()), nil}, true
	}
	return mapped{}, false
}

// logMapped emits the structured error record with the sanitized request
// context: redacted headers and body, route params, caller identity.
// Warnings for caller-fault statuses, errors for 5xx.
func logMapped(c *gin.Context, err error, m mapped) {
	params := make(map[string]string, len(c.Params))
	for _, p := range c.Params {
		params[p.Key] = p.Value
	}

	lg := LoggerFrom(c)
	ev := lg.Error()
	if m.status < http.StatusInternalServerError {
		ev = lg.Warn()
	}
	if body, ok := BodyFrom(c); ok {
		ev = ev.Interface("body", redact.Value(body))
	}
	ev.Err(err).
		Int("status", m.status).
		Str("code", m.code).
		Str("method", c.Request.Method).
		Str("url", c.Request.URL.String()).
		Interface("headers", redact.Headers(c.Request.Header)).
		Interface("params", params).
		Str("remote_ip", c.ClientIP()).
		Str("user_agent", c.Request.UserAgent()).
		Str("user_id", UserIDFrom(c)).
		Msg("request failed")
}

// NotFoundHandler answers unmatched routes with 404 RESOURCE_NOT_FOUND. The
// development message names the method and path; production stays generic.
func NotFoundHandler(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		LoggerFrom(c).Warn().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Str("user_id", UserIDFrom(c)).
			Msg("route not found")
		msg := "Resource not found"
		if !production {
			msg = c.Request.Method + " " + c.Request.URL.Path + " is not a known route"
		}
		httperr.Abort(c, http.StatusNotFound, httperr.CodeNotFound, msg)
	}
}

// pick returns the production or development variant of a message.
func pick(production bool, prod, dev string) string {
	if production {
		return prod
	}
	return dev
}

// Engine message sniffing, for drivers that do not translate constraint
// failures into GORM sentinels.

func isDuplicateMessage(err error) bool {
	s := err.Error()
	return strings.Contains(s, "UNIQUE constraint failed") ||
		strings.Contains(s, "duplicate key value violates unique constraint")
}

func isForeignKeyMessage(err error) bool {
	s := err.Error()
	return strings.Contains(s, "FOREIGN KEY constraint failed") ||
		strings.Contains(s, "violates foreign key constraint")
}

func isNotNullMessage(err error) bool {
	s := err.Error()
	return strings.Contains(s, "NOT NULL constraint failed") ||
		strings.Contains(s, "violates not-null constraint")
}

func isEngineMessage(err error) bool {
	s := err.Error()
	return strings.Contains(s, "SQLITE_") ||
		strings.Contains(s, "SQL logic error") ||
		strings.Contains(s, "database is locked")
}
