package auth

import (
	"testing"
	"time"
)

var secret = []byte("test-secret")

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-1", secret, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	uid, err := GetUserIDFromToken(token, secret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if uid != "user-1" {
		t.Fatalf("got %q, want user-1", uid)
	}
}

func TestExpiredToken(t *testing.T) {
	token, err := GenerateToken("user-1", secret, -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := GetUserIDFromToken(token, secret); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestWrongKey(t *testing.T) {
	token, err := GenerateToken("user-1", secret, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := GetUserIDFromToken(token, []byte("other-secret")); err == nil {
		t.Fatal("token signed with a different key accepted")
	}
}

func TestGarbageToken(t *testing.T) {
	if _, err := GetUserIDFromToken("not.a.token", secret); err == nil {
		t.Fatal("malformed token accepted")
	}
}
