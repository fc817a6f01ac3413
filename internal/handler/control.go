package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/tradecore/internal/domain"
)

// ControlHandler drives the manager's lifecycle.
type ControlHandler struct {
	core    Core
	logger  *slog.Logger
	actions map[string]func() bool
}

// NewControlHandler creates a new ControlHandler.
func NewControlHandler(core Core, logger *slog.Logger) *ControlHandler {
	return &ControlHandler{
		core:   core,
		logger: logger,
		actions: map[string]func() bool{
			"start":    core.Start,
			"stop":     core.Stop,
			"pause":    core.Pause,
			"resume":   core.Resume,
			"optimize": core.OptimizeMemory,
		},
	}
}

type controlResponse struct {
	Action string        `json:"action"`
	Status domain.Status `json:"status"`
}

// Do handles POST /control/{action}.
func (h *ControlHandler) Do(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	fn, ok := h.actions[action]
	if !ok {
		WriteError(w, http.StatusNotFound, "unknown_action", "unknown control action: "+action)
		return
	}

	before := h.core.Status()
	if !fn() {
		WriteError(w, http.StatusConflict, "invalid_transition",
			action+" is not allowed while "+before.String())
		return
	}

	h.logger.Info("control action applied",
		slog.String("action", action),
		slog.String("from", before.String()),
		slog.String("to", h.core.Status().String()),
	)
	WriteJSON(w, http.StatusOK, controlResponse{Action: action, Status: h.core.Status()})
}
