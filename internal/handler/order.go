package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/tradecore/internal/domain"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	core Core
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(core Core) *OrderHandler {
	return &OrderHandler{core: core}
}

// submitOrderRequest is the JSON request body for POST /orders. Price and
// quantity accept JSON numbers or decimal strings.
type submitOrderRequest struct {
	OrderID  string          `json:"order_id"`
	Symbol   string          `json:"symbol"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

type orderResponse struct {
	OrderID   string          `json:"order_id"`
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	SessionID domain.OwnerID  `json:"session_id"`
}

type cancelResponse struct {
	OrderID   string         `json:"order_id"`
	Cancelled bool           `json:"cancelled"`
	SessionID domain.OwnerID `json:"session_id"`
}

// SubmitOrder handles POST /orders.
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := ParseJSON(w, r, &req); err != nil {
		writeValidation(w, err)
		return
	}

	order := domain.Order{
		ID:       req.OrderID,
		Symbol:   req.Symbol,
		Price:    req.Price,
		Quantity: req.Quantity,
	}
	if err := order.Validate(); err != nil {
		writeValidation(w, err)
		return
	}
	if status := h.core.Status(); status != domain.StatusRunning {
		writeNotRunning(w, status)
		return
	}

	owner := ownerFromRequest(r)
	if !h.core.SubmitOrder(owner, order) {
		WriteError(w, http.StatusConflict, "order_rejected",
			"order "+order.ID+" was not accepted")
		return
	}

	WriteJSON(w, http.StatusCreated, orderResponse{
		OrderID:   order.ID,
		Symbol:    order.Symbol,
		Price:     order.Price,
		Quantity:  order.Quantity,
		SessionID: owner,
	})
}

// CancelOrder handles DELETE /orders/{order_id}.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")
	if status := h.core.Status(); status != domain.StatusRunning {
		writeNotRunning(w, status)
		return
	}

	owner := ownerFromRequest(r)
	if !h.core.CancelOrder(owner, orderID) {
		WriteError(w, http.StatusConflict, "cancel_rejected",
			"order "+orderID+" could not be cancelled")
		return
	}

	WriteJSON(w, http.StatusOK, cancelResponse{OrderID: orderID, Cancelled: true, SessionID: owner})
}
