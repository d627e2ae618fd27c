package monitoring

import (
	"sync"
	"time"

	"github.com/isdelr/user-directory-be/internal/models"
	"github.com/isdelr/user-directory-be/internal/services"
	"github.com/isdelr/user-directory-be/internal/storage"
	"github.com/isdelr/user-directory-be/internal/websocket"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/disk"
)

// Snapshotter periodically measures the directory (user counts, upload-area
// size, free disk space) and keeps the latest snapshot for the stats
// endpoint.
type Snapshotter struct {
	userSvc  services.UserServiceProvider
	uploads  *storage.UploadStore
	hub      *websocket.Hub
	schedule cron.Schedule
	ticker   *time.Ticker
	done     chan bool

	mu      sync.RWMutex
	current models.StatsSnapshot
}

// NewSnapshotter creates a Snapshotter firing on the given standard cron
// expression.
func NewSnapshotter(userSvc services.UserServiceProvider, uploads *storage.UploadStore, hub *websocket.Hub, cronExpr string) (*Snapshotter, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &Snapshotter{
		userSvc:  userSvc,
		uploads:  uploads,
		hub:      hub,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the snapshot loop. The ticker polls well below the schedule's
// resolution; the cron schedule decides when a snapshot is actually taken.
func (s *Snapshotter) Run() {
	log.Info().Msg("Starting background stats snapshotter...")
	s.ticker = time.NewTicker(15 * time.Second)
	defer s.ticker.Stop()

	// Take one immediately so the stats endpoint is never empty.
	s.takeSnapshot()
	next := s.schedule.Next(time.Now())

	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping background stats snapshotter.")
			return
		case now := <-s.ticker.C:
			if now.After(next) {
				s.takeSnapshot()
				next = s.schedule.Next(now)
			}
		}
	}
}

// Stop halts the snapshot loop.
func (s *Snapshotter) Stop() {
	s.done <- true
}

// Current returns the most recent snapshot.
func (s *Snapshotter) Current() models.StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// takeSnapshot measures the directory and publishes the result.
func (s *Snapshotter) takeSnapshot() {
	total, newToday, err := s.userSvc.CountUsers()
	if err != nil {
		log.Error().Err(err).Msg("Snapshotter: Failed to count users")
		return
	}

	snapshot := models.StatsSnapshot{
		TotalUsers: total,
		NewToday:   newToday,
		TakenAt:    time.Now().UTC(),
	}

	if size, err := s.uploads.Size(); err != nil {
		log.Warn().Err(err).Msg("Snapshotter: Could not measure upload area")
	} else {
		snapshot.UploadBytes = size
	}

	if usage, err := disk.Usage(s.uploads.Dir()); err != nil {
		log.Warn().Err(err).Msg("Snapshotter: Could not read disk usage")
	} else {
		snapshot.DiskFreeBytes = usage.Free
	}

	s.mu.Lock()
	s.current = snapshot
	s.mu.Unlock()

	log.Info().
		Int("total_users", snapshot.TotalUsers).
		Int("new_today", snapshot.NewToday).
		Int64("upload_bytes", snapshot.UploadBytes).
		Msg("Directory snapshot taken")

	if s.hub != nil {
		s.hub.Broadcast <- websocket.NewMessage("stats.snapshot", snapshot)
	}
}
