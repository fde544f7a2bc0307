package services

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/openagora/agora/backend/internal/models"
)

// recordingReleaser captures released storage keys.
type recordingReleaser struct {
	mu   sync.Mutex
	keys []string
}

func (r *recordingReleaser) Release(_ context.Context, storageKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, storageKey)
	return nil
}

func TestAuthorizeMutation(t *testing.T) {
	if err := AuthorizeMutation(nil, 1); err == nil {
		t.Error("nil session must be rejected")
	} else {
		assertAppError(t, err, http.StatusUnauthorized)
	}

	sc := &SessionContext{PersonID: 1, ActiveOwnerID: 10}
	assertAppError(t, AuthorizeMutation(sc, 11), http.StatusForbidden)

	if err := AuthorizeMutation(sc, 10); err != nil {
		t.Errorf("matching owner should pass, got %v", err)
	}
}

func TestProjectCreate_AttributedToActiveOwner(t *testing.T) {
	db := setupTestDB(t)
	founder, _ := seedPerson(t, db, "alice")
	org := seedOrganization(t, db, founder.ID, "acme")

	// Acting as the org, content belongs to the org-scoped owner, not
	// the person's own owner.
	sc, err := NewSessionService(db).Resolve(founder.ID, &org.OwnerID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	projects := NewProjectService(db, &recordingReleaser{})
	project, err := projects.Create(sc, &CreateProjectRequest{Title: "Community Garden"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if project.OwnerID != org.OwnerID {
		t.Errorf("OwnerID = %d, expected the org owner %d", project.OwnerID, org.OwnerID)
	}
}

func TestProjectCreate_DraftStaysUnpublished(t *testing.T) {
	db := setupTestDB(t)
	alice, _ := seedPerson(t, db, "alice")
	sc := sessionFor(t, db, alice.ID)

	draft := false
	projects := NewProjectService(db, &recordingReleaser{})
	project, err := projects.Create(sc, &CreateProjectRequest{Title: "Draft", IsPublished: &draft})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	var stored models.Project
	if err := db.First(&stored, project.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.IsPublished {
		t.Error("draft project was stored as published")
	}

	// Drafts stay out of the public listing.
	resp, err := projects.List(&ContentListRequest{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if resp.Total != 0 {
		t.Errorf("listed total = %d, expected 0", resp.Total)
	}
}

func TestProjectUpdate_ForeignOwnerForbidden(t *testing.T) {
	db := setupTestDB(t)
	alice, _ := seedPerson(t, db, "alice")
	bob, _ := seedPerson(t, db, "bob")

	projects := NewProjectService(db, &recordingReleaser{})
	project, err := projects.Create(sessionFor(t, db, alice.ID), &CreateProjectRequest{Title: "Mine"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	title := "Stolen"
	_, err = projects.Update(sessionFor(t, db, bob.ID), project.ID, &UpdateProjectRequest{Title: &title})
	assertAppError(t, err, http.StatusForbidden)

	// Even a person with a role in the owning org cannot mutate while
	// acting as themselves; attribution compares owner ids only.
	if _, err := projects.Update(sessionFor(t, db, alice.ID), project.ID, &UpdateProjectRequest{Title: &title}); err != nil {
		t.Fatalf("owner update should pass: %v", err)
	}
}

func TestProjectDelete_CascadesAndReleasesAttachments(t *testing.T) {
	db := setupTestDB(t)
	alice, _ := seedPerson(t, db, "alice")
	sc := sessionFor(t, db, alice.ID)

	releaser := &recordingReleaser{}
	projects := NewProjectService(db, releaser)
	posts := NewPostService(db)
	attachments := NewAttachmentService(db)

	project, err := projects.Create(sc, &CreateProjectRequest{Title: "Doomed"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := posts.Create(sc, &CreatePostRequest{Title: "update", Body: "hi", ProjectID: &project.ID}); err != nil {
		t.Fatalf("post Create() error = %v", err)
	}
	att, err := attachments.RegisterForProject(sc, project.ID, &RegisterAttachmentRequest{FileName: "photo.jpg"})
	if err != nil {
		t.Fatalf("RegisterForProject() error = %v", err)
	}

	if err := projects.Delete(context.Background(), sc, project.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var postCount, attCount int64
	db.Model(&models.Post{}).Where("project_id = ?", project.ID).Count(&postCount)
	db.Model(&models.Attachment{}).Where("project_id = ?", project.ID).Count(&attCount)
	if postCount != 0 || attCount != 0 {
		t.Errorf("cascade left posts=%d attachments=%d", postCount, attCount)
	}

	if len(releaser.keys) != 1 || releaser.keys[0] != att.StorageKey {
		t.Errorf("released keys = %v, expected [%s]", releaser.keys, att.StorageKey)
	}
}

func TestEventCreate_ValidatesTimeRange(t *testing.T) {
	db := setupTestDB(t)
	alice, _ := seedPerson(t, db, "alice")
	sc := sessionFor(t, db, alice.ID)

	events := NewEventService(db, &recordingReleaser{})
	starts := time.Now().Add(24 * time.Hour)
	ends := starts.Add(-time.Hour)

	_, err := events.Create(sc, &CreateEventRequest{Title: "Backwards", StartsAt: starts, EndsAt: &ends})
	assertAppError(t, err, http.StatusBadRequest)

	okEnd := starts.Add(2 * time.Hour)
	event, err := events.Create(sc, &CreateEventRequest{Title: "Meetup", StartsAt: starts, EndsAt: &okEnd})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if event.OwnerID != sc.ActiveOwnerID {
		t.Errorf("OwnerID = %d, expected %d", event.OwnerID, sc.ActiveOwnerID)
	}
}

func TestPostCreate_DualParentRejected(t *testing.T) {
	db := setupTestDB(t)
	alice, _ := seedPerson(t, db, "alice")
	sc := sessionFor(t, db, alice.ID)

	projectID, eventID := uint(1), uint(2)
	_, err := NewPostService(db).Create(sc, &CreatePostRequest{
		Title:     "confused",
		Body:      "x",
		ProjectID: &projectID,
		EventID:   &eventID,
	})
	assertAppError(t, err, http.StatusBadRequest)
}

func TestPostCreate_ForeignParentForbidden(t *testing.T) {
	db := setupTestDB(t)
	alice, _ := seedPerson(t, db, "alice")
	bob, _ := seedPerson(t, db, "bob")

	project, err := NewProjectService(db, &recordingReleaser{}).
		Create(sessionFor(t, db, alice.ID), &CreateProjectRequest{Title: "Alice's"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = NewPostService(db).Create(sessionFor(t, db, bob.ID), &CreatePostRequest{
		Title:     "intruder",
		Body:      "x",
		ProjectID: &project.ID,
	})
	assertAppError(t, err, http.StatusForbidden)
}

func TestPostCreate_InheritsParentOwner(t *testing.T) {
	db := setupTestDB(t)
	founder, _ := seedPerson(t, db, "alice")
	org := seedOrganization(t, db, founder.ID, "acme")

	orgSession, err := NewSessionService(db).Resolve(founder.ID, &org.OwnerID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	project, err := NewProjectService(db, &recordingReleaser{}).
		Create(orgSession, &CreateProjectRequest{Title: "Org project"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	post, err := NewPostService(db).Create(orgSession, &CreatePostRequest{
		Title:     "news",
		Body:      "x",
		ProjectID: &project.ID,
	})
	if err != nil {
		t.Fatalf("post Create() error = %v", err)
	}
	if post.OwnerID != org.OwnerID {
		t.Errorf("post owner = %d, expected parent owner %d", post.OwnerID, org.OwnerID)
	}
	if !post.HasParent() {
		t.Error("post should report a parent")
	}
}

func TestAttachmentRegister_OwnerOnlyAndUniqueKeys(t *testing.T) {
	db := setupTestDB(t)
	alice, _ := seedPerson(t, db, "alice")
	bob, _ := seedPerson(t, db, "bob")

	project, err := NewProjectService(db, &recordingReleaser{}).
		Create(sessionFor(t, db, alice.ID), &CreateProjectRequest{Title: "Media"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	attachments := NewAttachmentService(db)
	_, err = attachments.RegisterForProject(sessionFor(t, db, bob.ID), project.ID, &RegisterAttachmentRequest{FileName: "x.png"})
	assertAppError(t, err, http.StatusForbidden)

	a1, err := attachments.RegisterForProject(sessionFor(t, db, alice.ID), project.ID, &RegisterAttachmentRequest{FileName: "x.png"})
	if err != nil {
		t.Fatalf("RegisterForProject() error = %v", err)
	}
	a2, err := attachments.RegisterForProject(sessionFor(t, db, alice.ID), project.ID, &RegisterAttachmentRequest{FileName: "x.png"})
	if err != nil {
		t.Fatalf("RegisterForProject() error = %v", err)
	}
	if a1.StorageKey == "" || a1.StorageKey == a2.StorageKey {
		t.Error("storage keys must be generated and unique")
	}
}

func TestMessageSend_AndMarkRead(t *testing.T) {
	db := setupTestDB(t)
	alice, _ := seedPerson(t, db, "alice")
	bob, bobPersonal := seedPerson(t, db, "bob")

	messages := NewMessageService(db, newInlineNotifier(db))
	aliceSession := sessionFor(t, db, alice.ID)

	// Messaging yourself is rejected.
	_, err := messages.Send(aliceSession, &SendMessageRequest{RecipientOwnerID: aliceSession.ActiveOwnerID, Body: "hi me"})
	assertAppError(t, err, http.StatusBadRequest)

	msg, err := messages.Send(aliceSession, &SendMessageRequest{RecipientOwnerID: bobPersonal.ID, Subject: "hello", Body: "hi"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	inbox, err := messages.ListInbox(sessionFor(t, db, bob.ID), 1, 20)
	if err != nil {
		t.Fatalf("ListInbox() error = %v", err)
	}
	if inbox.Total != 1 {
		t.Fatalf("inbox total = %d, expected 1", inbox.Total)
	}

	// Only the recipient may mark a message read.
	err = messages.MarkRead(aliceSession, msg.ID)
	assertAppError(t, err, http.StatusForbidden)

	bobSession := sessionFor(t, db, bob.ID)
	if err := messages.MarkRead(bobSession, msg.ID); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	// Idempotent.
	if err := messages.MarkRead(bobSession, msg.ID); err != nil {
		t.Fatalf("repeat MarkRead() error = %v", err)
	}

	var stored models.Message
	db.First(&stored, msg.ID)
	if stored.ReadAt == nil {
		t.Error("ReadAt should be set")
	}

	// Delivery also produced a notification for the recipient.
	var count int64
	db.Model(&models.Notification{}).
		Where("recipient_owner_id = ? AND kind = ?", bobPersonal.ID, models.NotificationKindMessage).
		Count(&count)
	if count != 1 {
		t.Errorf("expected 1 message notification, got %d", count)
	}
}

func TestNotificationList_CountsUnread(t *testing.T) {
	db := setupTestDB(t)
	alice, _ := seedPerson(t, db, "alice")
	_, bobPersonal := seedPerson(t, db, "bob")

	follows := NewFollowService(db, newInlineNotifier(db))
	if err := follows.Follow(sessionFor(t, db, alice.ID), bobPersonal.ID); err != nil {
		t.Fatalf("Follow() error = %v", err)
	}

	notifications := NewNotificationService(db)
	bobSession := &SessionContext{ActiveOwnerID: bobPersonal.ID}

	resp, err := notifications.List(bobSession, 1, 20)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if resp.Total != 1 || resp.Unread != 1 {
		t.Fatalf("total=%d unread=%d, expected 1/1", resp.Total, resp.Unread)
	}

	if err := notifications.MarkRead(bobSession, resp.Items[0].ID); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}

	resp, _ = notifications.List(bobSession, 1, 20)
	if resp.Unread != 0 {
		t.Errorf("unread = %d after MarkRead, expected 0", resp.Unread)
	}
}
