package services

import (
	"net/http"
	"testing"

	"github.com/openagora/agora/backend/internal/config"
	"github.com/openagora/agora/backend/internal/models"
	"github.com/openagora/agora/backend/internal/utils"
	"gorm.io/gorm"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:            "test-secret-key-for-testing",
		ExpireHour:        1,
		RefreshExpireHour: 24,
	}
}

func registerTestPerson(t *testing.T, db *gorm.DB, handle string) (*AuthService, *AuthResult) {
	t.Helper()
	svc := NewAuthService(db, testJWTConfig())
	result, err := svc.Register(&RegisterRequest{
		Email:    handle + "@example.com",
		Handle:   handle,
		Password: "supersecret1",
	}, "127.0.0.1", "test")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return svc, result
}

func TestRegister_CreatesPersonalOwner(t *testing.T) {
	db := setupTestDB(t)
	_, result := registerTestPerson(t, db, "alice")

	var owners []models.Owner
	if err := db.Where("person_id = ?", result.Person.ID).Find(&owners).Error; err != nil {
		t.Fatalf("failed to load owners: %v", err)
	}
	if len(owners) != 1 {
		t.Fatalf("expected exactly one owner, got %d", len(owners))
	}
	if !owners[0].IsPersonal() {
		t.Error("the registration owner must be personal")
	}
	if owners[0].Kind != models.OwnerKindPerson {
		t.Errorf("kind = %s, expected person", owners[0].Kind)
	}

	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Error("registration should issue a token pair")
	}

	claims, err := utils.ParseToken(result.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.ActiveOwnerID != nil {
		t.Error("a fresh token carries no active-owner claim")
	}
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := registerTestPerson(t, db, "alice")

	_, err := svc.Register(&RegisterRequest{
		Email:    "alice@example.com",
		Handle:   "alice2",
		Password: "supersecret1",
	}, "", "")
	assertAppError(t, err, http.StatusConflict)

	// The failed registration must not leave an orphan owner row.
	var count int64
	db.Model(&models.Owner{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 owner row, got %d", count)
	}
}

func TestRegister_InvalidHandle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testJWTConfig())

	for _, bad := range []string{"ab", "has space", "way-too-hyphenated", "x"} {
		_, err := svc.Register(&RegisterRequest{
			Email:    "x@example.com",
			Handle:   bad,
			Password: "supersecret1",
		}, "", "")
		assertAppError(t, err, http.StatusBadRequest)
	}
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := registerTestPerson(t, db, "alice")

	result, err := svc.Login(&LoginRequest{Email: "Alice@Example.com", Password: "supersecret1"}, "", "")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Person.Handle != "alice" {
		t.Errorf("handle = %q", result.Person.Handle)
	}
	if result.Person.LastLogin == nil {
		t.Error("LastLogin should be stamped")
	}

	_, err = svc.Login(&LoginRequest{Email: "alice@example.com", Password: "wrong"}, "", "")
	assertAppError(t, err, http.StatusUnauthorized)

	_, err = svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "supersecret1"}, "", "")
	assertAppError(t, err, http.StatusUnauthorized)
}

func TestLogin_DisabledAccount(t *testing.T) {
	db := setupTestDB(t)
	svc, result := registerTestPerson(t, db, "alice")

	db.Model(result.Person).Update("is_active", false)

	_, err := svc.Login(&LoginRequest{Email: "alice@example.com", Password: "supersecret1"}, "", "")
	assertAppError(t, err, http.StatusUnauthorized)
}

func TestRefresh_RotatesToken(t *testing.T) {
	db := setupTestDB(t)
	svc, result := registerTestPerson(t, db, "alice")

	pair, err := svc.Refresh(result.Tokens.RefreshToken, nil, "127.0.0.1", "test")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if pair.RefreshToken == result.Tokens.RefreshToken {
		t.Error("refresh must rotate the token")
	}

	// The old token is revoked and linked to its replacement.
	var old models.RefreshToken
	if err := db.Where("person_id = ?", result.Person.ID).Order("id ASC").First(&old).Error; err != nil {
		t.Fatalf("failed to load original token: %v", err)
	}
	if old.RevokedAt == nil {
		t.Error("rotated token should be revoked")
	}
	if old.ReplacedByTokenID == nil {
		t.Error("rotated token should link its replacement")
	}

	// Replaying the old token fails.
	_, err = svc.Refresh(result.Tokens.RefreshToken, nil, "", "")
	assertAppError(t, err, http.StatusUnauthorized)

	// The new one works.
	if _, err := svc.Refresh(pair.RefreshToken, nil, "", ""); err != nil {
		t.Fatalf("fresh token should refresh: %v", err)
	}
}

func TestRefresh_CarriesActiveOwnerForward(t *testing.T) {
	db := setupTestDB(t)
	svc, result := registerTestPerson(t, db, "alice")
	org := seedOrganization(t, db, result.Person.ID, "acme")

	pair, err := svc.Refresh(result.Tokens.RefreshToken, &org.OwnerID, "", "")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	claims, err := utils.ParseToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.ActiveOwnerID == nil || *claims.ActiveOwnerID != org.OwnerID {
		t.Error("refresh should carry a still-valid active owner forward")
	}
}

func TestRefresh_StaleOwnerFallsBackToPersonal(t *testing.T) {
	db := setupTestDB(t)
	svc, result := registerTestPerson(t, db, "alice")
	_, other := registerTestPerson(t, db, "bob")

	// A claim for someone else's owner is dropped, not rejected.
	var bobPersonal models.Owner
	if err := db.Where("person_id = ? AND organization_id IS NULL", other.Person.ID).First(&bobPersonal).Error; err != nil {
		t.Fatalf("bob's personal owner missing: %v", err)
	}

	pair, err := svc.Refresh(result.Tokens.RefreshToken, &bobPersonal.ID, "", "")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	claims, _ := utils.ParseToken(pair.AccessToken)
	if claims.ActiveOwnerID != nil {
		t.Error("a stale claim should fall back to the personal owner (nil claim)")
	}
}

func TestCommitActiveOwner(t *testing.T) {
	db := setupTestDB(t)
	svc, result := registerTestPerson(t, db, "alice")
	org := seedOrganization(t, db, result.Person.ID, "acme")

	token, _, err := svc.CommitActiveOwner(result.Person, &org.OwnerID)
	if err != nil {
		t.Fatalf("CommitActiveOwner() error = %v", err)
	}

	claims, err := utils.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.ActiveOwnerID == nil || *claims.ActiveOwnerID != org.OwnerID {
		t.Error("committed token should carry the org owner claim")
	}

	// Committing again is an idempotent re-sign.
	if _, _, err := svc.CommitActiveOwner(result.Person, &org.OwnerID); err != nil {
		t.Fatalf("repeat commit should succeed: %v", err)
	}

	// Committing nil switches back to personal: no claim in the token.
	token, _, err = svc.CommitActiveOwner(result.Person, nil)
	if err != nil {
		t.Fatalf("CommitActiveOwner(nil) error = %v", err)
	}
	claims, _ = utils.ParseToken(token)
	if claims.ActiveOwnerID != nil {
		t.Error("personal-owner token should carry no claim")
	}
}

func TestCommitActiveOwner_ForeignOwnerForbidden(t *testing.T) {
	db := setupTestDB(t)
	svc, result := registerTestPerson(t, db, "alice")
	_, bob := registerTestPerson(t, db, "bob")
	org := seedOrganization(t, db, bob.Person.ID, "bobs-org")

	_, _, err := svc.CommitActiveOwner(result.Person, &org.OwnerID)
	assertAppError(t, err, http.StatusForbidden)
}

func TestRevokeRefreshToken_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	svc, result := registerTestPerson(t, db, "alice")

	if err := svc.RevokeRefreshToken(result.Tokens.RefreshToken); err != nil {
		t.Fatalf("RevokeRefreshToken() error = %v", err)
	}
	// Second revoke and unknown tokens are both silent.
	if err := svc.RevokeRefreshToken(result.Tokens.RefreshToken); err != nil {
		t.Fatalf("repeat revoke error = %v", err)
	}
	if err := svc.RevokeRefreshToken("unknown"); err != nil {
		t.Fatalf("unknown token revoke error = %v", err)
	}

	_, err := svc.Refresh(result.Tokens.RefreshToken, nil, "", "")
	assertAppError(t, err, http.StatusUnauthorized)
}
