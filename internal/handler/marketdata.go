package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/tradecore/internal/domain"
)

// MarketDataHandler feeds market-data events to the manager.
type MarketDataHandler struct {
	core Core
	now  func() time.Time
}

// NewMarketDataHandler creates a new MarketDataHandler.
func NewMarketDataHandler(core Core) *MarketDataHandler {
	return &MarketDataHandler{core: core, now: time.Now}
}

type marketDataRequest struct {
	Symbol    string          `json:"symbol"`
	Kind      string          `json:"kind"`
	Price     decimal.Decimal `json:"price"`
	Size      decimal.Decimal `json:"size"`
	Timestamp *time.Time      `json:"timestamp"`
}

// Publish handles POST /market-data. The event is processed synchronously
// but the manager reports no outcome, so the response is 202.
func (h *MarketDataHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var req marketDataRequest
	if err := ParseJSON(w, r, &req); err != nil {
		writeValidation(w, err)
		return
	}

	data, err := req.toDomain(h.now)
	if err != nil {
		writeValidation(w, err)
		return
	}
	if status := h.core.Status(); status != domain.StatusRunning {
		writeNotRunning(w, status)
		return
	}

	h.core.HandleMarketData(data)
	WriteJSON(w, http.StatusAccepted, map[string]any{
		"symbol": data.Symbol,
		"kind":   data.Kind,
	})
}

func (req marketDataRequest) toDomain(now func() time.Time) (domain.MarketData, error) {
	if req.Symbol == "" {
		return domain.MarketData{}, &domain.ValidationError{Message: "symbol is required"}
	}

	kind := domain.MarketDataKind(req.Kind)
	switch kind {
	case "":
		kind = domain.MarketDataQuote
	case domain.MarketDataQuote, domain.MarketDataTrade:
	default:
		return domain.MarketData{}, &domain.ValidationError{Message: "kind must be quote or trade"}
	}

	ts := now().UTC()
	if req.Timestamp != nil {
		ts = req.Timestamp.UTC()
	}

	return domain.MarketData{
		Symbol:    req.Symbol,
		Kind:      kind,
		Price:     req.Price,
		Size:      req.Size,
		Timestamp: ts,
	}, nil
}
