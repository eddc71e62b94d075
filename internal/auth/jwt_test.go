package auth

import (
	"testing"
	"time"

	"github.com/umutoz/defter-be/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	user := models.User{ID: "user-1", Email: "ayse@example.com"}

	token, err := tm.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := tm.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("UserID = %s, want %s", claims.UserID, user.ID)
	}
	if claims.ExpiresAt == nil {
		t.Fatal("Expected an expiry claim")
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("Token TTL %v out of range", ttl)
	}
}

func TestValidateRejects(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	user := models.User{ID: "user-1"}

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenManager("test-secret", -time.Minute)
		token, err := expired.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := tm.Validate(token); err == nil {
			t.Error("Expected expired token to be rejected")
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("other-secret", time.Hour)
		token, err := other.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := tm.Validate(token); err == nil {
			t.Error("Expected token signed with another secret to be rejected")
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := tm.Validate("not.a.token"); err == nil {
			t.Error("Expected malformed token to be rejected")
		}
	})
}
