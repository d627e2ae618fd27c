package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/isdelr/user-directory-be/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	// Rough per-user storage estimate shown on the dashboard.
	storagePerUserBytes = 150 * 1024

	// The "recent" filter shows the newest users only.
	recentLimit = 10
)

// ErrLoadInFlight reports that a list load was skipped because one is
// already outstanding.
var ErrLoadInFlight = errors.New("a user list load is already in flight")

// Result is the explicit outcome of a user-initiated mutation.
type Result struct {
	OK      bool
	Message string
}

// Stats is the summary block shown above the user table.
type Stats struct {
	Total        int
	NewToday     int
	Active       int
	StorageBytes int64
}

// ComputeStats derives the summary statistics from a user list. NewToday
// counts users whose creation timestamp falls on the same calendar date as
// now; Active is a synthetic 70%-of-total display figure, not a measurement.
func ComputeStats(users []models.User, now time.Time) Stats {
	newToday := 0
	for _, u := range users {
		y1, m1, d1 := u.CreatedAt.In(now.Location()).Date()
		y2, m2, d2 := now.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			newToday++
		}
	}
	return Stats{
		Total:        len(users),
		NewToday:     newToday,
		Active:       int(float64(len(users)) * 0.7),
		StorageBytes: int64(len(users)) * storagePerUserBytes,
	}
}

// Renderer receives the dashboard's output. Implementations draw to a
// terminal, a test recorder, or anything else.
type Renderer interface {
	RenderTable(users []models.User)
	RenderStats(stats Stats)
	ShowMessage(kind, text string)
}

// FormProvider supplies the edited fields for a user, typically by
// prompting with the cached record pre-filled. Returning ok=false cancels
// the edit.
type FormProvider func(user models.User) (Form, bool)

// Dashboard drives the user list view: loading, filtering, edit and delete
// flows, and the action dispatch table.
type Dashboard struct {
	client   *Client
	state    *State
	renderer Renderer

	// Delay between a successful edit and the follow-up reload.
	reloadDelay time.Duration
	now         func() time.Time

	forms    FormProvider
	dispatch map[string]func(ctx context.Context, id string) Result
}

// New creates a Dashboard around a client and renderer.
func New(client *Client, renderer Renderer) *Dashboard {
	d := &Dashboard{
		client:      client,
		state:       NewState(),
		renderer:    renderer,
		reloadDelay: 1500 * time.Millisecond,
		now:         time.Now,
	}
	d.dispatch = map[string]func(ctx context.Context, id string) Result{
		"edit": func(ctx context.Context, id string) Result {
			user, ok := d.state.Find(id)
			if !ok {
				return Result{OK: false, Message: "user not in the cached list"}
			}
			if d.forms == nil {
				return Result{OK: false, Message: "no form provider configured"}
			}
			form, ok := d.forms(user)
			if !ok {
				return Result{OK: false, Message: "edit cancelled"}
			}
			return d.Edit(ctx, id, form)
		},
		"delete": func(ctx context.Context, id string) Result {
			return d.Delete(ctx, id, nil)
		},
		"refresh": func(ctx context.Context, id string) Result {
			if err := d.Load(ctx); err != nil {
				return Result{OK: false, Message: err.Error()}
			}
			return Result{OK: true, Message: "user list reloaded"}
		},
	}
	return d
}

// SetFormProvider installs the prompt used by the edit dispatch action.
func (d *Dashboard) SetFormProvider(provider FormProvider) {
	d.forms = provider
}

// State exposes the dashboard's client-state holder.
func (d *Dashboard) State() *State {
	return d.state
}

// Load fetches the full user list and re-renders the table and statistics.
// A call while another load is outstanding is a no-op returning
// ErrLoadInFlight.
func (d *Dashboard) Load(ctx context.Context) error {
	if !d.state.TryBeginLoad() {
		log.Debug().Msg("Already loading users, skipping")
		return ErrLoadInFlight
	}
	defer d.state.EndLoad()

	users, err := d.client.List(ctx)
	if err != nil {
		d.renderer.ShowMessage("error", "Unable to load users")
		return err
	}

	d.state.SetUsers(users)
	d.renderer.RenderTable(users)
	d.renderer.RenderStats(ComputeStats(users, d.now()))
	return nil
}

// Search renders the cached users whose name, email, or mobile contains the
// term, case-insensitively. It never refetches.
func (d *Dashboard) Search(term string) []models.User {
	term = strings.ToLower(term)
	matched := make([]models.User, 0)
	for _, u := range d.state.Users() {
		if strings.Contains(strings.ToLower(u.Name), term) ||
			strings.Contains(strings.ToLower(u.Email), term) ||
			strings.Contains(strings.ToLower(u.Mobile), term) {
			matched = append(matched, u)
		}
	}
	d.renderer.RenderTable(matched)
	return matched
}

// Filter renders a named view of the cached list: "all" restores the full
// cache, "recent" shows the newest users first, capped. It never refetches.
func (d *Dashboard) Filter(name string) ([]models.User, error) {
	users := d.state.Users()
	switch name {
	case "all":
	case "recent":
		sort.Slice(users, func(i, j int) bool {
			return users[i].CreatedAt.After(users[j].CreatedAt)
		})
		if len(users) > recentLimit {
			users = users[:recentLimit]
		}
	default:
		return nil, fmt.Errorf("unknown filter %q", name)
	}
	d.renderer.RenderTable(users)
	return users, nil
}

// Edit submits an update for a user. On success it shows a transient
// message and reloads the list after a short delay; on failure the server's
// message (or a generic fallback) is surfaced.
func (d *Dashboard) Edit(ctx context.Context, id string, form Form) Result {
	if _, ok := d.state.Find(id); !ok {
		return Result{OK: false, Message: "user not in the cached list"}
	}

	if _, err := d.client.Update(ctx, id, form); err != nil {
		message := "Update failed"
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			message = apiErr.Message
		}
		d.renderer.ShowMessage("error", message)
		return Result{OK: false, Message: message}
	}

	d.renderer.ShowMessage("success", "User updated successfully")

	// The reload fires on a timer regardless of any interleaved state.
	time.Sleep(d.reloadDelay)
	if err := d.Load(ctx); err != nil && !errors.Is(err, ErrLoadInFlight) {
		log.Warn().Err(err).Msg("Reload after edit failed")
	}
	return Result{OK: true, Message: "User updated successfully"}
}

// Delete confirms and removes a user, then reloads the list. Failures
// surface only a generic message; the response detail is not consulted.
func (d *Dashboard) Delete(ctx context.Context, id string, confirm func() bool) Result {
	if confirm != nil && !confirm() {
		return Result{OK: false, Message: "delete cancelled"}
	}

	if err := d.client.Delete(ctx, id); err != nil {
		d.renderer.ShowMessage("error", "Error deleting user")
		return Result{OK: false, Message: "Error deleting user"}
	}

	d.renderer.ShowMessage("success", "User deleted successfully")
	if err := d.Load(ctx); err != nil && !errors.Is(err, ErrLoadInFlight) {
		log.Warn().Err(err).Msg("Reload after delete failed")
	}
	return Result{OK: true, Message: "User deleted successfully"}
}

// Dispatch routes a named action for a user id through the dispatch table.
func (d *Dashboard) Dispatch(ctx context.Context, action, id string) Result {
	handler, ok := d.dispatch[action]
	if !ok {
		return Result{OK: false, Message: fmt.Sprintf("unknown action %q", action)}
	}
	return handler(ctx, id)
}
