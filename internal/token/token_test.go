package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignVerify_RoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	tok, err := m.Sign("u-123", "customer")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "u-123" || claims.Role != "customer" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.Issuer != "bookline" {
		t.Fatalf("issuer = %q", claims.Issuer)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	tok, _ := NewManager("secret-a", time.Hour).Sign("u-1", "customer")
	_, err := NewManager("secret-b", time.Hour).Verify(tok)
	if !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		t.Fatalf("forged token: got %v, want signature error", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	m.ttl = -time.Minute // issue an already-expired token
	tok, err := m.Sign("u-1", "customer")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Verify(tok); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expired token: got %v, want ErrTokenExpired", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	for _, s := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := m.Verify(s); err == nil {
			t.Fatalf("Verify(%q) accepted garbage", s)
		}
	}
}

func TestNewManager_TTLDefault(t *testing.T) {
	if m := NewManager("s", 0); m.ttl != time.Hour {
		t.Fatalf("ttl default = %v", m.ttl)
	}
}
