package dashboard

import (
	"testing"

	"github.com/isdelr/user-directory-be/internal/models"
)

func TestStateAccessors(t *testing.T) {
	s := NewState()

	if s.Len() != 0 || s.Users() == nil {
		t.Fatal("a fresh state must hold an empty, non-nil list")
	}

	s.SetUsers([]models.User{{ID: "1", Name: "Ada"}, {ID: "2", Name: "Grace"}})
	if s.Len() != 2 {
		t.Fatalf("expected 2 users, got %d", s.Len())
	}

	u, ok := s.Find("2")
	if !ok || u.Name != "Grace" {
		t.Fatalf("expected to find Grace, got %+v ok=%v", u, ok)
	}
	if _, ok := s.Find("missing"); ok {
		t.Fatal("unknown ids must not be found")
	}

	// Users returns a copy; mutating it must not touch the cache.
	list := s.Users()
	list[0].Name = "Changed"
	if got, _ := s.Find("1"); got.Name != "Ada" {
		t.Fatal("cache must not be mutable through the returned slice")
	}

	s.Clear()
	if s.Len() != 0 {
		t.Fatal("clear must drop the cached list")
	}
}

func TestStateBusyFlag(t *testing.T) {
	s := NewState()

	if !s.TryBeginLoad() {
		t.Fatal("first load must acquire the busy flag")
	}
	if s.TryBeginLoad() {
		t.Fatal("overlapping load must be refused")
	}
	s.EndLoad()
	if !s.TryBeginLoad() {
		t.Fatal("flag must be reusable after EndLoad")
	}
}
