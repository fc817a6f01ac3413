package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/tradecore/internal/domain"
)

// TransactionHandler exposes explicit per-session transactions. The session
// is named by the X-Session-ID header, which is required here.
type TransactionHandler struct {
	core Core
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(core Core) *TransactionHandler {
	return &TransactionHandler{core: core}
}

type transactionResponse struct {
	Action    string         `json:"action"`
	SessionID domain.OwnerID `json:"session_id"`
}

// Do handles POST /transactions/{action}.
func (h *TransactionHandler) Do(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")

	var fn func(domain.OwnerID) bool
	switch action {
	case "begin":
		fn = h.core.BeginTransaction
	case "commit":
		fn = h.core.CommitTransaction
	case "rollback":
		fn = h.core.RollbackTransaction
	default:
		WriteError(w, http.StatusNotFound, "unknown_action", "unknown transaction action: "+action)
		return
	}

	owner := domain.OwnerID(strings.TrimSpace(r.Header.Get(sessionHeader)))
	if owner == "" {
		WriteError(w, http.StatusBadRequest, domain.ErrInvalidOwner.Error(),
			sessionHeader+" header is required")
		return
	}
	// Commit and rollback stay available while paused.
	if status := h.core.Status(); action == "begin" && status != domain.StatusRunning {
		writeNotRunning(w, status)
		return
	}

	if !fn(owner) {
		WriteError(w, http.StatusConflict, "transaction_rejected",
			action+" was rejected for session "+string(owner))
		return
	}

	WriteJSON(w, http.StatusOK, transactionResponse{Action: action, SessionID: owner})
}
