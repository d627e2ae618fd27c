package dashboard

import (
	"sync"

	"github.com/isdelr/user-directory-be/internal/models"
)

// State holds the dashboard's client-side view: the last-fetched user list
// and the single busy flag guarding overlapping loads.
type State struct {
	mu      sync.Mutex
	users   []models.User
	loading bool
}

// NewState creates an empty State.
func NewState() *State {
	return &State{}
}

// Users returns a copy of the cached list.
func (s *State) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out
}

// SetUsers replaces the cached list.
func (s *State) SetUsers(users []models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = users
}

// Clear drops the cached list.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = nil
}

// Find returns the cached user with the given id.
func (s *State) Find(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// Len returns the cached list's size.
func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// TryBeginLoad sets the busy flag, reporting false when a load is already
// in flight.
func (s *State) TryBeginLoad() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return false
	}
	s.loading = true
	return true
}

// EndLoad clears the busy flag.
func (s *State) EndLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

// Loading reports whether a load is in flight.
func (s *State) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}
