package utils

import (
	"testing"
	"time"
)

func init() {
	SetJWTSecret("test-secret-key-for-testing")
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(1, "alice", "user", nil, 24)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if token == "" {
		t.Error("GenerateToken() returned empty token")
	}

	if len(token) < 50 {
		t.Errorf("token seems too short: %d chars", len(token))
	}
}

func TestGenerateToken_DifferentTokens(t *testing.T) {
	token1, _ := GenerateToken(1, "alice", "user", nil, 24)
	token2, _ := GenerateToken(2, "bob", "admin", nil, 24)

	if token1 == token2 {
		t.Error("different people should produce different tokens")
	}
}

func TestParseToken(t *testing.T) {
	personID := uint(42)
	handle := "alice"
	role := "admin"

	token, _ := GenerateToken(personID, handle, role, nil, 24)

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	if claims.PersonID != personID {
		t.Errorf("PersonID = %d, expected %d", claims.PersonID, personID)
	}
	if claims.Handle != handle {
		t.Errorf("Handle = %q, expected %q", claims.Handle, handle)
	}
	if claims.SystemRole != role {
		t.Errorf("SystemRole = %q, expected %q", claims.SystemRole, role)
	}
	if claims.ActiveOwnerID != nil {
		t.Errorf("ActiveOwnerID = %v, expected nil", *claims.ActiveOwnerID)
	}
}

func TestParseToken_ActiveOwnerClaim(t *testing.T) {
	ownerID := uint(7)
	token, _ := GenerateToken(1, "alice", "user", &ownerID, 24)

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	if claims.ActiveOwnerID == nil {
		t.Fatal("ActiveOwnerID should be carried through the token")
	}
	if *claims.ActiveOwnerID != ownerID {
		t.Errorf("ActiveOwnerID = %d, expected %d", *claims.ActiveOwnerID, ownerID)
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	invalidTokens := []string{
		"",
		"invalid",
		"not.a.token",
		"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature",
	}

	for _, token := range invalidTokens {
		_, err := ParseToken(token)
		if err == nil {
			t.Errorf("ParseToken(%q) should return error", token)
		}
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	SetJWTSecret("original-secret")
	token, _ := GenerateToken(1, "alice", "user", nil, 24)

	SetJWTSecret("different-secret")
	_, err := ParseToken(token)

	SetJWTSecret("test-secret-key-for-testing")

	if err == nil {
		t.Error("ParseToken should fail with wrong secret")
	}
}

func TestGenerateToken_Expiration(t *testing.T) {
	token, _ := GenerateToken(1, "alice", "user", nil, 1)
	claims, _ := ParseToken(token)

	expiresAt := claims.ExpiresAt.Time
	now := time.Now()

	if expiresAt.Before(now) {
		t.Error("token should not be expired immediately")
	}

	expectedExpiry := now.Add(1 * time.Hour)
	diff := expiresAt.Sub(expectedExpiry)
	if diff < -time.Minute || diff > time.Minute {
		t.Errorf("expiration time is off by more than 1 minute: %v", diff)
	}
}

func TestSetJWTSecret(t *testing.T) {
	SetJWTSecret("original")
	token1, _ := GenerateToken(1, "alice", "user", nil, 24)

	SetJWTSecret("new-secret")
	token2, _ := GenerateToken(1, "alice", "user", nil, 24)

	SetJWTSecret("test-secret-key-for-testing")

	if token1 == token2 {
		t.Error("tokens generated with different secrets should be different")
	}
}
