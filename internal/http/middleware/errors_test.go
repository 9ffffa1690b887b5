package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/bookline-app/bookline-backend/internal/http/httperr"
	"github.com/bookline-app/bookline-backend/internal/payments"
	"github.com/bookline-app/bookline-backend/internal/services"
)

func TestClassify_Table(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		production bool
		status     int
		code       string
	}{
		// ORM family
		{"duplicate key", gorm.ErrDuplicatedKey, true, 409, httperr.CodeDuplicate},
		{"duplicate message", errors.New("UNIQUE constraint failed: users.email"), true, 409, httperr.CodeDuplicate},
		{"record not found", gorm.ErrRecordNotFound, true, 404, httperr.CodeNotFound},
		{"foreign key", gorm.ErrForeignKeyViolated, true, 400, httperr.CodeValidation},
		{"not null", errors.New("NOT NULL constraint failed: bookings.service_id"), true, 400, httperr.CodeValidation},
		{"invalid data", gorm.ErrInvalidData, true, 400, httperr.CodeValidation},
		{"engine failure", gorm.ErrInvalidDB, true, 500, httperr.CodeDatabase},

		// Named validation error
		{"validation", &httperr.ValidationError{Message: "bad"}, true, 400, httperr.CodeValidation},

		// Token family
		{"expired token", jwt.ErrTokenExpired, true, 401, httperr.CodeTokenExpired},
		{"malformed token", jwt.ErrTokenMalformed, true, 401, httperr.CodeAuthRequired},

		// Payment gateway family
		{"card declined", &payments.GatewayError{Type: payments.TypeCardError, Message: "declined"}, true, 400, httperr.CodePaymentFailed},
		{"gateway rate limit", &payments.GatewayError{Type: payments.TypeRateLimitError}, true, 429, httperr.CodeRateLimited},
		{"gateway invalid request", &payments.GatewayError{Type: payments.TypeInvalidRequestError}, true, 400, httperr.CodeValidation},
		{"gateway api error", &payments.GatewayError{Type: payments.TypeAPIError}, true, 500, httperr.CodePaymentFailed},
		{"gateway connection", &payments.GatewayError{Type: payments.TypeConnectionError}, true, 500, httperr.CodePaymentFailed},
		{"gateway auth", &payments.GatewayError{Type: payments.TypeAuthenticationError}, true, 500, httperr.CodePaymentFailed},

		// Service sentinels
		{"bad credentials", services.ErrInvalidCredentials, true, 401, httperr.CodeAuthRequired},
		{"disabled account", services.ErrAccountDisabled, true, 401, httperr.CodeAccessDenied},
		{"email taken", services.ErrEmailTaken, true, 409, httperr.CodeDuplicate},
		{"booking missing", services.ErrBookingNotFound, true, 404, httperr.CodeNotFound},
		{"slot taken", services.ErrSlotTaken, true, 400, httperr.CodeBusinessRule},

		// Fallback
		{"unknown", errors.New("boom"), true, 500, httperr.CodeInternal},

		// Wrapped errors still classify
		{"wrapped sentinel", fmt.Errorf("creating booking: %w", services.ErrSlotTaken), true, 400, httperr.CodeBusinessRule},
	}

	for _, tc := range cases {
		m := classify(tc.err, tc.production)
		if m.status != tc.status || m.code != tc.code {
			t.Fatalf("%s: got (%d, %s), want (%d, %s)", tc.name, m.status, m.code, tc.status, tc.code)
		}
	}
}

func TestClassify_ProductionMessagesStayGeneric(t *testing.T) {
	leaky := errors.New("UNIQUE constraint failed: users.email")

	prod := classify(leaky, true)
	if prod.message != "Resource already exists" {
		t.Fatalf("production message leaks internals: %q", prod.message)
	}
	dev := classify(leaky, false)
	if dev.message != leaky.Error() {
		t.Fatalf("development message lost detail: %q", dev.message)
	}

	// Provider detail never reaches production payment messages.
	card := &payments.GatewayError{Type: payments.TypeCardError, Code: "card_declined", Message: "Your card was declined."}
	if m := classify(card, true); m.message == card.Message {
		t.Fatalf("production card message echoes the provider")
	}
	if m := classify(card, false); m.message != card.Message {
		t.Fatalf("development card message should carry provider detail")
	}
}

// mapperEngine mounts RequestID → Logger → ErrorMapper → a handler that
// records err on the context, mirroring how wrapped handlers report errors.
func mapperEngine(production bool, err error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Logger(), ErrorMapper(production))
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(err)
		c.Abort()
	})
	return r
}

func TestErrorMapper_WritesEnvelope(t *testing.T) {
	r := mapperEngine(true, services.ErrEmailTaken)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "rid-42")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d", w.Code)
	}
	var env httperr.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("body: %v", err)
	}
	if env.Success {
		t.Fatalf("success must be false")
	}
	if env.Error.Code != httperr.CodeDuplicate {
		t.Fatalf("code = %q", env.Error.Code)
	}
	if env.RequestID != "rid-42" {
		t.Fatalf("requestId = %q", env.RequestID)
	}
	if _, err := time.Parse(time.RFC3339, env.Timestamp); err != nil {
		t.Fatalf("timestamp unparseable: %v", err)
	}
}

func TestErrorMapper_NoErrorNoWrite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorMapper(true))
	r.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"fine": true}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if w.Code != http.StatusOK || w.Body.String() != `{"fine":true}` {
		t.Fatalf("mapper altered a successful response: %d %s", w.Code, w.Body.String())
	}
}

func TestNotFoundHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.NoRoute(NotFoundHandler(true))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	var env httperr.Envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	if env.Error.Code != httperr.CodeNotFound || env.Error.Message != "Resource not found" {
		t.Fatalf("envelope = %+v", env.Error)
	}

	// Development names the route.
	rd := gin.New()
	rd.NoRoute(NotFoundHandler(false))
	w = httptest.NewRecorder()
	rd.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	if env.Error.Message == "Resource not found" {
		t.Fatalf("development 404 should name the route")
	}
}
