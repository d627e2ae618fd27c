package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/isdelr/user-directory-be/internal/database"
	"github.com/isdelr/user-directory-be/internal/models"
	"github.com/isdelr/user-directory-be/internal/websocket"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (*UserService, *EventService) {
	t.Helper()
	db := newTestDB(t)
	eventSvc := NewEventService(db)
	return NewUserService(db, nil, eventSvc), eventSvc
}

// newSubscribedHub returns a running hub with one registered client whose
// Send channel the test can drain directly, no websocket connection needed.
func newSubscribedHub(t *testing.T) (*websocket.Hub, *websocket.Client) {
	t.Helper()
	hub := websocket.NewHub()
	go hub.Run()
	client := websocket.NewClient(hub, nil)
	hub.Register <- client
	return hub, client
}

func waitForMessage(t *testing.T, client *websocket.Client) websocket.Message {
	t.Helper()
	select {
	case raw := <-client.Send:
		var msg websocket.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("broadcast is not a valid message: %v", err)
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a hub broadcast")
	}
	return websocket.Message{}
}

func validInput() UserInput {
	return UserInput{
		Name:   "Ada Lovelace",
		Email:  "ada@example.com",
		Mobile: "0123456789",
		DOB:    "1990-01-01",
	}
}

func TestCreateAndGetUser(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.CreateUser(validInput())
	if err != nil {
		t.Fatalf("expected create to succeed, got: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected a server-assigned id")
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("expected a server-assigned creation timestamp")
	}
	if created.Photo != "" {
		t.Fatalf("expected no photo, got %q", created.Photo)
	}

	fetched, err := svc.GetUserByID(created.ID)
	if err != nil {
		t.Fatalf("expected get to succeed, got: %v", err)
	}
	if fetched.Name != created.Name || fetched.Email != created.Email ||
		fetched.Mobile != created.Mobile || fetched.DOB != created.DOB {
		t.Fatalf("fetched user %+v does not match created %+v", fetched, created)
	}
	if fetched.Photo != "" {
		t.Fatalf("expected fetched photo to stay empty, got %q", fetched.Photo)
	}
}

func TestCreateUserMissingFieldPersistsNothing(t *testing.T) {
	svc, _ := newTestService(t)

	input := validInput()
	input.Name = ""

	_, err := svc.CreateUser(input)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected a ValidationError, got: %v", err)
	}
	if ve.Field != "name" {
		t.Fatalf("expected the name field to be reported, got %q", ve.Field)
	}

	users, err := svc.GetAllUsers()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("expected no persisted users, got %d", len(users))
	}
}

func TestGetAllUsersEmptyIsNotNil(t *testing.T) {
	svc, _ := newTestService(t)

	users, err := svc.GetAllUsers()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if users == nil {
		t.Fatal("expected an empty slice, got nil")
	}
}

func TestUpdateUser(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.CreateUser(validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	input := validInput()
	input.Name = "Ada King"
	updated, err := svc.UpdateUser(created.ID, input)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Ada King" {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}
	if updated.ID != created.ID {
		t.Fatal("id must not change on update")
	}
}

func TestUpdateKeepsPhotoWhenNotResubmitted(t *testing.T) {
	svc, _ := newTestService(t)

	input := validInput()
	input.Photo = "abc123.png"
	created, err := svc.CreateUser(input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.UpdateUser(created.ID, validInput())
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Photo != "abc123.png" {
		t.Fatalf("expected photo to be kept, got %q", updated.Photo)
	}

	replace := validInput()
	replace.Photo = "def456.png"
	updated, err = svc.UpdateUser(created.ID, replace)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Photo != "def456.png" {
		t.Fatalf("expected photo to be replaced, got %q", updated.Photo)
	}
}

func TestUpdateUnknownIDBeatsValidation(t *testing.T) {
	svc, _ := newTestService(t)

	// Even an empty form reports not-found for an unknown id.
	_, err := svc.UpdateUser("no-such-id", UserInput{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}

	users, _ := svc.GetAllUsers()
	if len(users) != 0 {
		t.Fatalf("expected no mutation, found %d users", len(users))
	}
}

func TestDeleteUserTwice(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.CreateUser(validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.DeleteUser(created.ID); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}
	if err := svc.DeleteUser(created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got: %v", err)
	}
}

func TestMutationsAppendEvents(t *testing.T) {
	svc, eventSvc := newTestService(t)

	created, err := svc.CreateUser(validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.UpdateUser(created.ID, validInput()); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := svc.DeleteUser(created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	events, err := eventSvc.GetRecentEvents(10)
	if err != nil {
		t.Fatalf("reading events failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	seen := map[string]bool{}
	for _, e := range events {
		seen[e.Type] = true
	}
	for _, want := range []string{"user.create", "user.update", "user.delete"} {
		if !seen[want] {
			t.Fatalf("missing event type %q in %v", want, seen)
		}
	}
}

func TestMutationsBroadcastToHub(t *testing.T) {
	db := newTestDB(t)
	hub, client := newSubscribedHub(t)
	svc := NewUserService(db, hub, NewEventService(db))

	created, err := svc.CreateUser(validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	msg := waitForMessage(t, client)
	if msg.Action != "user.created" {
		t.Fatalf("expected a user.created broadcast, got %q", msg.Action)
	}
	payload, ok := msg.Payload.(map[string]interface{})
	if !ok || payload["id"] != created.ID {
		t.Fatalf("broadcast payload does not carry the user, got %v", msg.Payload)
	}

	if _, err := svc.UpdateUser(created.ID, validInput()); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if msg := waitForMessage(t, client); msg.Action != "user.updated" {
		t.Fatalf("expected a user.updated broadcast, got %q", msg.Action)
	}

	if err := svc.DeleteUser(created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if msg := waitForMessage(t, client); msg.Action != "user.deleted" {
		t.Fatalf("expected a user.deleted broadcast, got %q", msg.Action)
	}
}

// failingEventService simulates an unavailable audit store.
type failingEventService struct{}

func (failingEventService) CreateEvent(eventType, level, message string, userID *string) error {
	return errors.New("event store unavailable")
}

func (failingEventService) GetRecentEvents(limit int) ([]models.Event, error) {
	return nil, nil
}

func TestBroadcastSurvivesAuditFailure(t *testing.T) {
	db := newTestDB(t)
	hub, client := newSubscribedHub(t)
	svc := NewUserService(db, hub, failingEventService{})

	created, err := svc.CreateUser(validInput())
	if err != nil {
		t.Fatalf("a failed audit insert must not fail the mutation: %v", err)
	}
	if _, err := svc.GetUserByID(created.ID); err != nil {
		t.Fatalf("created user must be persisted: %v", err)
	}

	if msg := waitForMessage(t, client); msg.Action != "user.created" {
		t.Fatalf("broadcast must still fire when the audit insert fails, got %q", msg.Action)
	}
}

func TestCountUsers(t *testing.T) {
	svc, _ := newTestService(t)

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateUser(validInput()); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	total, newToday, err := svc.CountUsers()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if newToday != 3 {
		t.Fatalf("expected 3 created today, got %d", newToday)
	}
}
