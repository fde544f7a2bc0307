package services

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/openagora/agora/backend/internal/models"
	"github.com/openagora/agora/backend/internal/utils"
	"github.com/openagora/agora/backend/pkg/response"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	utils.SetJWTSecret("test-secret-key-for-testing")
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// seedPerson inserts a Person together with their personal Owner.
func seedPerson(t *testing.T, db *gorm.DB, handle string) (*models.Person, *models.Owner) {
	t.Helper()
	person := models.Person{
		Email:      handle + "@example.com",
		Handle:     handle,
		SystemRole: "user",
		IsActive:   true,
	}
	if err := db.Create(&person).Error; err != nil {
		t.Fatalf("failed to seed person %s: %v", handle, err)
	}
	owner := models.Owner{
		PersonID: person.ID,
		Kind:     models.OwnerKindPerson,
		Status:   models.OwnerStatusActive,
	}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("failed to seed personal owner for %s: %v", handle, err)
	}
	return &person, &owner
}

// seedOrganization founds an organization through the real service path.
func seedOrganization(t *testing.T, db *gorm.DB, founderID uint, slug string) *CreateOrganizationResult {
	t.Helper()
	result, err := NewOrganizationService(db).Create(founderID, &CreateOrganizationRequest{
		Name: slug,
		Slug: slug,
	})
	if err != nil {
		t.Fatalf("failed to seed organization %s: %v", slug, err)
	}
	return result
}

func assertAppError(t *testing.T, err error, wantStatus int) *response.AppError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error with status %d, got nil", wantStatus)
	}
	var appErr *response.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *response.AppError, got %T: %v", err, err)
	}
	if appErr.HTTPStatus != wantStatus {
		t.Fatalf("expected HTTP status %d, got %d (%s)", wantStatus, appErr.HTTPStatus, appErr.Message)
	}
	return appErr
}

func TestResolve_DefaultsToPersonalOwner(t *testing.T) {
	db := setupTestDB(t)
	person, personal := seedPerson(t, db, "alice")

	sc, err := NewSessionService(db).Resolve(person.ID, nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if sc.ActiveOwnerID != personal.ID {
		t.Errorf("ActiveOwnerID = %d, expected personal owner %d", sc.ActiveOwnerID, personal.ID)
	}
	if !sc.ActiveOwner.IsPersonal() {
		t.Error("resolved owner should be the personal owner")
	}
}

func TestResolve_OrgOwnerWithMembership(t *testing.T) {
	db := setupTestDB(t)
	founder, _ := seedPerson(t, db, "alice")
	org := seedOrganization(t, db, founder.ID, "acme")

	sc, err := NewSessionService(db).Resolve(founder.ID, &org.OwnerID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if sc.ActiveOwnerID != org.OwnerID {
		t.Errorf("ActiveOwnerID = %d, expected org owner %d", sc.ActiveOwnerID, org.OwnerID)
	}
	if sc.ActiveOwner.IsPersonal() {
		t.Error("resolved owner should be organization-scoped")
	}
}

func TestResolve_FallsBackOnForeignOwner(t *testing.T) {
	db := setupTestDB(t)
	alice, alicePersonal := seedPerson(t, db, "alice")
	_, bobPersonal := seedPerson(t, db, "bob")

	// A stale or forged claim for someone else's owner falls back
	// silently instead of failing the read.
	sc, err := NewSessionService(db).Resolve(alice.ID, &bobPersonal.ID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if sc.ActiveOwnerID != alicePersonal.ID {
		t.Errorf("ActiveOwnerID = %d, expected fallback to personal owner %d", sc.ActiveOwnerID, alicePersonal.ID)
	}
}

func TestResolve_FallsBackOnDisabledOwner(t *testing.T) {
	db := setupTestDB(t)
	founder, personal := seedPerson(t, db, "alice")
	org := seedOrganization(t, db, founder.ID, "acme")

	if err := db.Model(&models.Owner{}).Where("id = ?", org.OwnerID).
		Update("status", models.OwnerStatusDisabled).Error; err != nil {
		t.Fatalf("failed to disable owner: %v", err)
	}

	sc, err := NewSessionService(db).Resolve(founder.ID, &org.OwnerID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if sc.ActiveOwnerID != personal.ID {
		t.Errorf("disabled owner should fall back to personal, got %d", sc.ActiveOwnerID)
	}
}

func TestResolve_FallsBackOnNonexistentOwner(t *testing.T) {
	db := setupTestDB(t)
	person, personal := seedPerson(t, db, "alice")

	missing := uint(9999)
	sc, err := NewSessionService(db).Resolve(person.ID, &missing)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if sc.ActiveOwnerID != personal.ID {
		t.Errorf("missing owner should fall back to personal, got %d", sc.ActiveOwnerID)
	}
}

func TestValidateSwitch_NilMeansPersonal(t *testing.T) {
	db := setupTestDB(t)
	person, personal := seedPerson(t, db, "alice")

	owner, err := NewSessionService(db).ValidateSwitch(person.ID, nil)
	if err != nil {
		t.Fatalf("ValidateSwitch() error = %v", err)
	}
	if owner.ID != personal.ID {
		t.Errorf("owner = %d, expected personal %d", owner.ID, personal.ID)
	}
}

func TestValidateSwitch_RejectsForeignOwner(t *testing.T) {
	db := setupTestDB(t)
	alice, _ := seedPerson(t, db, "alice")
	_, bobPersonal := seedPerson(t, db, "bob")

	// Unlike Resolve, an explicit switch never falls back.
	_, err := NewSessionService(db).ValidateSwitch(alice.ID, &bobPersonal.ID)
	assertAppError(t, err, http.StatusForbidden)
}

func TestValidateSwitch_RejectsNonexistentOwner(t *testing.T) {
	db := setupTestDB(t)
	alice, _ := seedPerson(t, db, "alice")

	missing := uint(9999)
	_, err := NewSessionService(db).ValidateSwitch(alice.ID, &missing)
	assertAppError(t, err, http.StatusForbidden)
}

func TestValidateSwitch_RejectsFollowerRole(t *testing.T) {
	db := setupTestDB(t)
	founder, _ := seedPerson(t, db, "alice")
	follower, _ := seedPerson(t, db, "bob")
	org := seedOrganization(t, db, founder.ID, "acme")

	members := NewMembershipService(db, nil)
	membership, err := members.AddMember(founder.ID, org.Organization.ID, &AddMemberRequest{
		PersonID: follower.ID,
		Role:     models.RoleFollower,
	})
	if err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	_, err = NewSessionService(db).ValidateSwitch(follower.ID, &membership.OwnerID)
	assertAppError(t, err, http.StatusForbidden)
}

func TestValidateSwitch_AcceptsMemberRole(t *testing.T) {
	db := setupTestDB(t)
	founder, _ := seedPerson(t, db, "alice")
	member, _ := seedPerson(t, db, "bob")
	org := seedOrganization(t, db, founder.ID, "acme")

	members := NewMembershipService(db, nil)
	membership, err := members.AddMember(founder.ID, org.Organization.ID, &AddMemberRequest{
		PersonID: member.ID,
		Role:     models.RoleMember,
	})
	if err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	owner, err := NewSessionService(db).ValidateSwitch(member.ID, &membership.OwnerID)
	if err != nil {
		t.Fatalf("ValidateSwitch() error = %v", err)
	}
	if owner.ID != membership.OwnerID {
		t.Errorf("owner = %d, expected %d", owner.ID, membership.OwnerID)
	}
}

func TestDescribe_ReportsAnomalyInsteadOfFailing(t *testing.T) {
	db := setupTestDB(t)
	person, _ := seedPerson(t, db, "alice")

	// An organization-kind owner pointing nowhere is bad data, but the
	// identity listing must still render it.
	broken := models.Owner{
		PersonID: person.ID,
		Kind:     models.OwnerKindOrganization,
		Status:   models.OwnerStatusActive,
	}
	orgID := uint(4242)
	broken.OrganizationID = &orgID
	if err := db.Create(&broken).Error; err != nil {
		t.Fatalf("failed to create broken owner: %v", err)
	}

	view, err := NewOwnerService(db).Describe(broken.ID)
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if view.Anomaly == "" {
		t.Error("expected an anomaly note for a dangling organization owner")
	}
	if view.Organization != nil {
		t.Error("dangling owner should not resolve to an organization ref")
	}
}

func TestListForPerson_PersonalOwnerFirst(t *testing.T) {
	db := setupTestDB(t)
	founder, personal := seedPerson(t, db, "alice")
	for i := 0; i < 2; i++ {
		seedOrganization(t, db, founder.ID, fmt.Sprintf("acme-%d", i))
	}

	views, err := NewOwnerService(db).ListForPerson(founder.ID)
	if err != nil {
		t.Fatalf("ListForPerson() error = %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 owners, got %d", len(views))
	}
	if views[0].OwnerID != personal.ID {
		t.Errorf("personal owner should sort first, got %d", views[0].OwnerID)
	}
	if views[0].Kind != models.OwnerKindPerson {
		t.Errorf("first owner kind = %s, expected person", views[0].Kind)
	}
}
