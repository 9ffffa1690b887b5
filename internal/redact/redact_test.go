package redact

import (
	"net/http"
	"reflect"
	"testing"
)

func TestValue_DeepRedaction(t *testing.T) {
	in := map[string]any{
		"email":    "a@b.c",
		"password": "hunter2",
		"profile": map[string]any{
			"name":  "Ada",
			"token": "tok-123",
			"cards": []any{
				map[string]any{"cardNumber": "4242424242424242", "cvv": "123", "brand": "visa"},
			},
		},
		"initData": "query_id=abc",
		"count":    3,
	}

	got := Value(in).(map[string]any)

	if got["password"] != Marker || got["initData"] != Marker {
		t.Fatalf("top-level sensitive fields not redacted: %v", got)
	}
	if got["email"] != "a@b.c" || got["count"] != 3 {
		t.Fatalf("non-sensitive fields must pass through: %v", got)
	}

	profile := got["profile"].(map[string]any)
	if profile["token"] != Marker {
		t.Fatalf("nested token not redacted")
	}
	card := profile["cards"].([]any)[0].(map[string]any)
	if card["cardNumber"] != Marker || card["cvv"] != Marker {
		t.Fatalf("card fields inside slice not redacted: %v", card)
	}
	if card["brand"] != "visa" {
		t.Fatalf("brand should survive: %v", card)
	}

	// Input must not be mutated.
	if in["password"] != "hunter2" {
		t.Fatalf("input map was mutated")
	}
	orig := in["profile"].(map[string]any)["cards"].([]any)[0].(map[string]any)
	if orig["cvv"] != "123" {
		t.Fatalf("nested input was mutated")
	}
}

func TestValue_Scalars(t *testing.T) {
	for _, v := range []any{nil, "plain", 42, 3.14, true} {
		if got := Value(v); !reflect.DeepEqual(got, v) {
			t.Fatalf("scalar %v changed to %v", v, got)
		}
	}
}

func TestHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer abc")
	h.Set("Cookie", "sid=1")
	h.Set("Content-Type", "application/json")
	h.Add("Set-Cookie", "a=1")

	got := Headers(h)
	if got["Authorization"] != Marker || got["Cookie"] != Marker || got["Set-Cookie"] != Marker {
		t.Fatalf("credential headers not masked: %v", got)
	}
	if got["Content-Type"] != "application/json" {
		t.Fatalf("plain header altered: %v", got)
	}
}

func TestIsSensitiveField(t *testing.T) {
	if !IsSensitiveField("paymentMethodId") || !IsSensitiveField("botToken") {
		t.Fatalf("expected payment/bot fields to be sensitive")
	}
	if IsSensitiveField("Password") {
		t.Fatalf("matching is exact and case-sensitive")
	}
}
