package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shirkaty/portal/internal/model"
)

func testUser() *model.User {
	return &model.User{
		ID:    "usr-test123456",
		Email: "amira@example.co.uk",
		Name:  "Amira",
		Role:  model.RoleUser,
	}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", "shirkaty", time.Hour)

	tok, err := tm.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	id, err := tm.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.UserID != "usr-test123456" {
		t.Errorf("UserID = %q", id.UserID)
	}
	if id.Email != "amira@example.co.uk" {
		t.Errorf("Email = %q", id.Email)
	}
	if id.Role != model.RoleUser {
		t.Errorf("Role = %q, want user", id.Role)
	}
}

func TestTokenManager_AdminRoleClaim(t *testing.T) {
	tm := NewTokenManager("test-secret", "shirkaty", time.Hour)
	u := testUser()
	u.Role = model.RoleAdmin

	tok, err := tm.Issue(u)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	id, err := tm.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want admin", id.Role)
	}
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager("test-secret", "shirkaty", -time.Minute)

	tok, err := tm.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := tm.Verify(tok); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify error = %v, want ErrTokenExpired", err)
	}
}

func TestTokenManager_WrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", "shirkaty", time.Hour)
	other := NewTokenManager("other-secret", "shirkaty", time.Hour)

	tok, err := tm.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := other.Verify(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify error = %v, want ErrTokenInvalid", err)
	}
}

func TestIdentityFromClaims_RoleDefaultsToUser(t *testing.T) {
	id := IdentityFromClaims(jwt.MapClaims{"sub": "usr-x"})
	if id.Role != model.RoleUser {
		t.Errorf("Role = %q, want user", id.Role)
	}

	id = IdentityFromClaims(jwt.MapClaims{"sub": "usr-x", "role": "superuser"})
	if id.Role != model.RoleUser {
		t.Errorf("unknown role claim should map to user, got %q", id.Role)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "s3cret-pass") {
		t.Error("CheckPassword rejected the correct password")
	}
	if CheckPassword(hash, "wrong-pass") {
		t.Error("CheckPassword accepted a wrong password")
	}
}
