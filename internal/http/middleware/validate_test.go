package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/bookline-app/bookline-backend/internal/http/httperr"
	"github.com/bookline-app/bookline-backend/internal/platform"
	"github.com/bookline-app/bookline-backend/internal/schemas"
)

// postBody posts a JSON payload with optional extra headers.
func postBody(r *gin.Engine, path string, payload string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestValidateRequest_PlatformSpecificBinding(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Classify())
	r.POST("/bookings", ValidateRequest(schemas.NameCreateBooking, InBody), func(c *gin.Context) {
		c.String(http.StatusOK, fmt.Sprintf("%T", ValidatedBody(c)))
	})

	base := `"serviceId":"b5d1f842-0000-4000-8000-000000000000","startsAt":"2026-09-01T10:00:00Z"`

	// Web binds the common shape.
	w := postBody(r, "/bookings", "{"+base+"}", nil)
	if w.Code != 200 || w.Body.String() != "*schemas.CreateBookingRequest" {
		t.Fatalf("web: %d %s", w.Code, w.Body.String())
	}

	// The mini-app shape additionally requires queryId.
	miniapp := map[string]string{platform.HeaderTelegramInitData: "query_id=x"}
	w = postBody(r, "/bookings", "{"+base+`,"queryId":"AAF3"}`, miniapp)
	if w.Code != 200 || w.Body.String() != "*schemas.MiniAppCreateBookingRequest" {
		t.Fatalf("miniapp: %d %s", w.Code, w.Body.String())
	}
	w = postBody(r, "/bookings", "{"+base+"}", miniapp)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("miniapp without queryId: %d %s", w.Code, w.Body.String())
	}

	// The bot shape requires the conversation id.
	bot := map[string]string{platform.HeaderTelegramBotToken: "s3cret"}
	w = postBody(r, "/bookings", "{"+base+`,"chatId":99}`, bot)
	if w.Code != 200 || w.Body.String() != "*schemas.BotCreateBookingRequest" {
		t.Fatalf("bot: %d %s", w.Code, w.Body.String())
	}
}

func TestValidateRequest_FailureDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Classify())
	r.POST("/register", ValidateRequest(schemas.NameRegister, InBody), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := postBody(r, "/register", `{"email":"nope","password":"short","name":"A"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	var env struct {
		Error struct {
			Code    string               `json:"code"`
			Details []httperr.FieldError `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("body: %v", err)
	}
	if env.Error.Code != httperr.CodeValidation {
		t.Fatalf("code = %q", env.Error.Code)
	}
	fields := map[string]string{}
	for _, d := range env.Error.Details {
		fields[d.Field] = d.Code
	}
	if fields["Email"] != "email" || fields["Password"] != "min" {
		t.Fatalf("details = %v", env.Error.Details)
	}

	// Malformed JSON collapses to a single body-level entry.
	w = postBody(r, "/register", `{"email":`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed: %d", w.Code)
	}
	env.Error.Details = nil
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	if len(env.Error.Details) != 1 || env.Error.Details[0].Code != "invalid_payload" {
		t.Fatalf("malformed details = %v", env.Error.Details)
	}
}

func TestValidateRequest_QueryLocation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Classify())
	r.GET("/search", ValidateRequest(schemas.NameSearchServices, InQuery), func(c *gin.Context) {
		q := Validated(c, InQuery).(*schemas.SearchServicesQuery)
		c.JSON(http.StatusOK, gin.H{"limit": q.Limit})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search?q=haircut&limit=10", nil))
	if w.Code != 200 {
		t.Fatalf("valid query: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search?limit=500", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("limit over cap: %d", w.Code)
	}
}

func TestValidateRequest_ParamsLocation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Classify())
	r.GET("/bookings/:bookingId", ValidateRequest(schemas.NameBookingParams, InParams), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bookings/b5d1f842-0000-4000-8000-000000000000", nil))
	if w.Code != 200 {
		t.Fatalf("valid id: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bookings/not-a-uuid", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid id: %d", w.Code)
	}
}

func TestRequireFeature(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Classify())
	r.POST("/pay", RequireFeature(platform.FeatureOnlinePayment), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Web supports online payment.
	if w := postBody(r, "/pay", `{}`, nil); w.Code != 200 {
		t.Fatalf("web: %d", w.Code)
	}
	// The bot surface does not.
	w := postBody(r, "/pay", `{}`, map[string]string{platform.HeaderTelegramBotToken: "s3cret"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("bot: %d %s", w.Code, w.Body.String())
	}
	var env httperr.Envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	if env.Error.Code != httperr.CodeFeatureMissing {
		t.Fatalf("code = %q", env.Error.Code)
	}
}
