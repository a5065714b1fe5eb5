package auth

import (
	"context"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	v := NewJWTVerifier("test-secret")
	token, err := v.GenerateToken("alice", time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	id, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id != "alice" {
		t.Fatalf("want alice, got %q", id)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTVerifier("secret-a").GenerateToken("alice", time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := NewJWTVerifier("secret-b").Verify(context.Background(), token); err == nil {
		t.Fatalf("token signed with another secret accepted")
	}
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	v := NewJWTVerifier("test-secret")
	token, err := v.GenerateToken("alice", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := v.Verify(context.Background(), token); err == nil {
		t.Fatalf("expired token accepted")
	}
}

func TestJWTRejectsMissingUserID(t *testing.T) {
	v := NewJWTVerifier("test-secret")
	token, err := v.GenerateToken("  ", time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := v.Verify(context.Background(), token); err == nil {
		t.Fatalf("token without a user id accepted")
	}
}

func TestInsecureVerifier(t *testing.T) {
	var v InsecureVerifier
	id, err := v.Verify(context.Background(), " alice ")
	if err != nil || id != "alice" {
		t.Fatalf("want alice, got %q (%v)", id, err)
	}
	if _, err := v.Verify(context.Background(), "  "); err == nil {
		t.Fatalf("blank identity accepted")
	}
}
