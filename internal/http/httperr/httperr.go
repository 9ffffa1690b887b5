// Package httperr defines the uniform error envelope returned by every error
// path of the API, the closed set of machine-readable error codes, and the
// helpers middleware and handlers use to abort a request with that envelope.
//
// Conventions:
//   - Every error response carries HTTP status + a stable UPPER_SNAKE code.
//   - The envelope shape is identical across all error paths:
//     { "success": false,
//       "error": { "code", "message", "details"?, "retryAfter"? },
//       "timestamp": "<ISO8601>",
//       "requestId": "<echoed X-Request-ID>" }
//   - Nothing below the terminal error mapper writes ad-hoc error bodies;
//     middleware that must stop the chain does so through Abort, which
//     produces the same envelope.
package httperr

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Error codes. The set is closed; clients branch on these values.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeAuthRequired     = "AUTHENTICATION_REQUIRED"
	CodeTokenExpired     = "TOKEN_EXPIRED"
	CodeAccessDenied     = "ACCESS_DENIED"
	CodeInsufficientPerm = "INSUFFICIENT_PERMISSIONS"
	CodeNotFound         = "RESOURCE_NOT_FOUND"
	CodeDuplicate        = "DUPLICATE_RESOURCE"
	CodeDatabase         = "DATABASE_ERROR"
	CodePaymentFailed    = "PAYMENT_FAILED"
	CodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	CodeBusinessRule     = "BUSINESS_RULE_VIOLATION"
	CodeFeatureMissing   = "FEATURE_NOT_AVAILABLE"
	CodeInternal         = "INTERNAL_SERVER_ERROR"
	CodeMissingTelegram  = "MISSING_TELEGRAM_DATA"
	CodeInvalidBotToken  = "INVALID_BOT_TOKEN"
)

// ValidationError is the named error handlers and services raise for
// caller-fault input problems discovered after schema validation. The
// terminal mapper renders its message verbatim in development and a generic
// message in production.
type ValidationError struct {
	Message string
	Details []FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string { return e.Message }

// FieldError is one entry of a validation failure detail list.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Body is the error object nested in the envelope.
type Body struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	RetryAfter *int   `json:"retryAfter,omitempty"`
}

// Envelope is the uniform error response shape.
type Envelope struct {
	Success   bool   `json:"success"`
	Error     Body   `json:"error"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"requestId,omitempty"`
}

// New builds an envelope for the given code and message, stamping the current
// time and echoing the request's correlation ID.
func New(c *gin.Context, code, message string) Envelope {
	return Envelope{
		Success:   false,
		Error:     Body{Code: code, Message: message},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestID(c),
	}
}

// Abort writes the envelope with the given HTTP status and stops the chain.
func Abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, New(c, code, message))
}

// AbortWithDetails writes the envelope with a structured detail list (used by
// validation failures) and stops the chain.
func AbortWithDetails(c *gin.Context, status int, code, message string, details any) {
	env := New(c, code, message)
	env.Error.Details = details
	c.AbortWithStatusJSON(status, env)
}

// AbortRateLimited writes the 429 contract: the envelope plus a retryAfter
// hint in whole seconds.
func AbortRateLimited(c *gin.Context, message string, retryAfter int) {
	env := New(c, CodeRateLimited, message)
	env.Error.RetryAfter = &retryAfter
	c.AbortWithStatusJSON(429, env)
}

// requestID echoes the inbound/assigned X-Request-ID when present.
func requestID(c *gin.Context) string {
	if rid := c.Writer.Header().Get("X-Request-ID"); rid != "" {
		return rid
	}
	return c.GetHeader("X-Request-ID")
}
