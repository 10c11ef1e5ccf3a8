package session

import (
	"context"
	"testing"
	"time"

	"alphasignals/internal/config"
)

func testProvider(ttl time.Duration) *Provider {
	return NewProvider(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: ttl})
}

func TestSignAndParseRoundTrip(t *testing.T) {
	p := testProvider(time.Hour)
	tok, err := p.SignToken("u1", "alice")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := p.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UID != "u1" || claims.Username != "alice" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := testProvider(time.Hour).SignToken("u1", "alice")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	other := NewProvider(config.AuthConfig{JWTSecret: "different", TokenTTL: time.Hour})
	if _, err := other.Parse(tok); err == nil {
		t.Fatalf("expected signature mismatch")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	p := &Provider{secret: []byte("test-secret"), ttl: -time.Minute}
	tok, err := p.SignToken("u1", "alice")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := p.Parse(tok); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := testProvider(time.Hour).Parse("not.a.token"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestPrincipalFromContext(t *testing.T) {
	if _, ok := PrincipalFromContext(context.Background()); ok {
		t.Fatalf("bare context should carry no principal")
	}

	ctx := WithPrincipal(context.Background(), Principal{UserID: "u1", Username: "alice"})
	got, ok := PrincipalFromContext(ctx)
	if !ok || got.UserID != "u1" || got.Username != "alice" {
		t.Fatalf("got %+v ok=%v", got, ok)
	}

	// A principal without a user id is treated as unauthenticated.
	empty := WithPrincipal(context.Background(), Principal{})
	if _, ok := PrincipalFromContext(empty); ok {
		t.Fatalf("empty principal should not authenticate")
	}
}
