package handler

import (
	"net/http"

	"github.com/efreitasn/tradecore/internal/domain"
)

// StatsHandler serves the manager's status and counters.
type StatsHandler struct {
	core Core
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(core Core) *StatsHandler {
	return &StatsHandler{core: core}
}

type statsResponse struct {
	Status      domain.Status `json:"status"`
	Healthy     bool          `json:"healthy"`
	HasCapacity bool          `json:"has_capacity"`
	Stats       domain.Stats  `json:"stats"`
}

// Get handles GET /stats.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, statsResponse{
		Status:      h.core.Status(),
		Healthy:     h.core.IsHealthy(),
		HasCapacity: h.core.HasCapacity(),
		Stats:       h.core.Stats(),
	})
}

// Ready handles GET /readyz: 200 when the manager is healthy, 503 otherwise.
func (h *StatsHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := h.core.Status()
	if !h.core.IsHealthy() {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"ready": false, "status": status})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ready": true, "status": status})
}
