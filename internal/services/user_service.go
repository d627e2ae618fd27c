package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/user-directory-be/internal/models"
	"github.com/isdelr/user-directory-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when no user matches the requested ID.
var ErrNotFound = errors.New("user not found")

// ValidationError reports a missing required form field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

// UserInput carries the form fields of a create or update submission.
// Photo holds the stored file name, already written to the upload area;
// empty means no photo was submitted.
type UserInput struct {
	Name   string
	Email  string
	Mobile string
	DOB    string
	Photo  string
}

// Validate checks that every required field is present and non-empty.
func (in UserInput) Validate() error {
	required := []struct {
		field, value string
	}{
		{"name", in.Name},
		{"dob", in.DOB},
		{"email", in.Email},
		{"mobile", in.Mobile},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.field}
		}
	}
	return nil
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetAllUsers() ([]models.User, error)
	GetUserByID(id string) (models.User, error)
	CreateUser(input UserInput) (models.User, error)
	UpdateUser(id string, input UserInput) (models.User, error)
	DeleteUser(id string) error
	CountUsers() (total, newToday int, err error)
}

// UserService provides business logic for the user directory.
type UserService struct {
	db           *sql.DB
	hub          *websocket.Hub
	eventService EventServiceProvider
}

// NewUserService creates a new UserService. The hub may be nil when no
// dashboards need change notifications (tests, one-shot tooling).
func NewUserService(db *sql.DB, hub *websocket.Hub, eventService EventServiceProvider) *UserService {
	return &UserService{db: db, hub: hub, eventService: eventService}
}

// GetAllUsers retrieves every user in insertion order.
func (s *UserService) GetAllUsers() ([]models.User, error) {
	rows, err := s.db.Query("SELECT id, name, email, mobile, dob, photo, created_at FROM users ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	row := s.db.QueryRow("SELECT id, name, email, mobile, dob, photo, created_at FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// CreateUser validates the submission and inserts a new record with a
// server-assigned ID and creation timestamp.
func (s *UserService) CreateUser(input UserInput) (models.User, error) {
	if err := input.Validate(); err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Email:     input.Email,
		Mobile:    input.Mobile,
		DOB:       input.DOB,
		Photo:     input.Photo,
		CreatedAt: time.Now().UTC(),
	}

	stmt, err := s.db.Prepare("INSERT INTO users(id, name, email, mobile, dob, photo, created_at) VALUES(?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return models.User{}, err
	}
	defer stmt.Close()

	_, err = stmt.Exec(user.ID, user.Name, user.Email, user.Mobile, user.DOB, nullable(user.Photo), user.CreatedAt)
	if err != nil {
		return models.User{}, err
	}

	s.recordChange("user.create", fmt.Sprintf("User '%s' was added to the directory.", user.Name), user, "user.created")
	return user, nil
}

// UpdateUser overwrites an existing record's fields. The existence check
// runs before validation so an unknown ID reports not-found regardless of
// the submitted form. A provided photo replaces the stored reference; the
// previous file is left in place.
func (s *UserService) UpdateUser(id string, input UserInput) (models.User, error) {
	current, err := s.GetUserByID(id)
	if err != nil {
		return models.User{}, err
	}

	if err := input.Validate(); err != nil {
		return models.User{}, err
	}

	photo := current.Photo
	if input.Photo != "" {
		photo = input.Photo
	}

	stmt, err := s.db.Prepare("UPDATE users SET name = ?, email = ?, mobile = ?, dob = ?, photo = ? WHERE id = ?")
	if err != nil {
		return models.User{}, err
	}
	defer stmt.Close()

	if _, err := stmt.Exec(input.Name, input.Email, input.Mobile, input.DOB, nullable(photo), id); err != nil {
		return models.User{}, err
	}

	updated, err := s.GetUserByID(id)
	if err != nil {
		return models.User{}, err
	}

	s.recordChange("user.update", fmt.Sprintf("User '%s' was updated.", updated.Name), updated, "user.updated")
	return updated, nil
}

// DeleteUser removes a user record. The associated photo file, if any,
// stays in the upload area.
func (s *UserService) DeleteUser(id string) error {
	user, err := s.GetUserByID(id)
	if err != nil {
		return err
	}

	res, err := s.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	s.recordChange("user.delete", fmt.Sprintf("User '%s' was permanently deleted.", user.Name), user, "user.deleted")
	return nil
}

// CountUsers returns the total user count and the count of users created
// on the current calendar date (UTC, matching stored timestamps).
func (s *UserService) CountUsers() (int, int, error) {
	rows, err := s.db.Query("SELECT created_at FROM users")
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	today := time.Now().UTC()
	y, m, d := today.Date()

	var total, newToday int
	for rows.Next() {
		var createdAt time.Time
		if err := rows.Scan(&createdAt); err != nil {
			return 0, 0, err
		}
		total++
		cy, cm, cd := createdAt.UTC().Date()
		if cy == y && cm == m && cd == d {
			newToday++
		}
	}
	return total, newToday, rows.Err()
}

// recordChange appends an audit event and notifies connected dashboards.
// The mutation itself already succeeded; a lost audit row is logged, not
// fatal, and never suppresses the broadcast.
func (s *UserService) recordChange(eventType, message string, user models.User, wsAction string) {
	if s.eventService != nil {
		if err := s.eventService.CreateEvent(eventType, "info", message, &user.ID); err != nil {
			log.Error().Err(err).Str("user_id", user.ID).Str("event_type", eventType).Msg("Failed to record directory event")
		}
	}
	if s.hub != nil {
		s.hub.Broadcast <- websocket.NewMessage(wsAction, user)
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (models.User, error) {
	var user models.User
	var photo sql.NullString
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Mobile, &user.DOB, &photo, &user.CreatedAt); err != nil {
		return models.User{}, err
	}
	user.Photo = photo.String
	return user, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
