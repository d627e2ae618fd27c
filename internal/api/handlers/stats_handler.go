package handlers

import (
	"net/http"

	"github.com/isdelr/user-directory-be/internal/models"
)

// StatsProvider exposes the most recent directory snapshot.
type StatsProvider interface {
	Current() models.StatsSnapshot
}

// StatsHandler serves the snapshotter's current view of the directory.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// Get handles the request for the current stats snapshot.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.provider.Current())
}
