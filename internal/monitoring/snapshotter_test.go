package monitoring

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/isdelr/user-directory-be/internal/database"
	"github.com/isdelr/user-directory-be/internal/services"
	"github.com/isdelr/user-directory-be/internal/storage"
)

func newTestFixtures(t *testing.T) (*services.UserService, *storage.UploadStore) {
	t.Helper()

	dir := t.TempDir()
	db, err := database.New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	uploads, err := storage.New(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("failed to create upload store: %v", err)
	}
	return services.NewUserService(db, nil, nil), uploads
}

func TestNewSnapshotterRejectsBadSchedule(t *testing.T) {
	userSvc, uploads := newTestFixtures(t)

	if _, err := NewSnapshotter(userSvc, uploads, nil, "not a cron expression"); err == nil {
		t.Fatal("expected an invalid cron expression to be rejected")
	}
}

func TestTakeSnapshotMeasuresDirectory(t *testing.T) {
	userSvc, uploads := newTestFixtures(t)

	for _, name := range []string{"Ada Lovelace", "Grace Hopper", "Alan Turing"} {
		_, err := userSvc.CreateUser(services.UserInput{
			Name:   name,
			Email:  strings.ReplaceAll(strings.ToLower(name), " ", ".") + "@example.com",
			Mobile: "0123456789",
			DOB:    "1990-01-01",
		})
		if err != nil {
			t.Fatalf("failed to create user %q: %v", name, err)
		}
	}

	photo := strings.NewReader("not really a jpeg")
	if _, err := uploads.Save(photo, "photo.jpg"); err != nil {
		t.Fatalf("failed to save upload: %v", err)
	}

	s, err := NewSnapshotter(userSvc, uploads, nil, "* * * * *")
	if err != nil {
		t.Fatalf("failed to create snapshotter: %v", err)
	}

	s.takeSnapshot()

	snap := s.Current()
	if snap.TotalUsers != 3 {
		t.Fatalf("expected 3 total users, got %d", snap.TotalUsers)
	}
	if snap.NewToday != 3 {
		t.Fatalf("expected 3 users created today, got %d", snap.NewToday)
	}
	if snap.UploadBytes != int64(len("not really a jpeg")) {
		t.Fatalf("expected upload area size %d, got %d", len("not really a jpeg"), snap.UploadBytes)
	}
	if snap.TakenAt.IsZero() {
		t.Fatal("expected the snapshot to carry its timestamp")
	}
}
