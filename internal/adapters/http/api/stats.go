package api

import (
	"net/http"

	"github.com/okian/skillcat/internal/domain/types"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() types.Stats
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}
