package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/efreitasn/tradecore/internal/domain"
)

// sessionHeader carries the caller's owner identity across requests.
const sessionHeader = "X-Session-ID"

// Core is the trading manager as seen by the HTTP layer.
type Core interface {
	Start() bool
	Stop() bool
	Pause() bool
	Resume() bool
	OptimizeMemory() bool

	SubmitOrder(owner domain.OwnerID, order domain.Order) bool
	CancelOrder(owner domain.OwnerID, orderID string) bool
	HandleMarketData(data domain.MarketData)

	BeginTransaction(owner domain.OwnerID) bool
	CommitTransaction(owner domain.OwnerID) bool
	RollbackTransaction(owner domain.OwnerID) bool

	Status() domain.Status
	Stats() domain.Stats
	IsHealthy() bool
	HasCapacity() bool
}

// NewRouter creates a chi router with all routes registered, request logging,
// and Content-Type validation middleware. metrics may be nil.
func NewRouter(core Core, metrics http.Handler, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogging(logger))
	r.Use(middleware.Recoverer)
	r.Use(contentTypeJSON)

	statsH := NewStatsHandler(core)
	controlH := NewControlHandler(core, logger)
	orderH := NewOrderHandler(core)
	marketH := NewMarketDataHandler(core)
	txH := NewTransactionHandler(core)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", statsH.Ready)
	r.Get("/stats", statsH.Get)

	r.Post("/control/{action}", controlH.Do)

	r.Post("/orders", orderH.SubmitOrder)
	r.Delete("/orders/{order_id}", orderH.CancelOrder)

	r.Post("/market-data", marketH.Publish)

	r.Post("/transactions/{action}", txH.Do)

	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	return r
}

// ownerFromRequest returns the caller's session identity, minting a fresh
// one when the request carries none.
func ownerFromRequest(r *http.Request) domain.OwnerID {
	if id := strings.TrimSpace(r.Header.Get(sessionHeader)); id != "" {
		return domain.OwnerID(id)
	}
	return domain.NewOwnerID()
}

// requestLogging returns middleware that logs each request's method, path,
// status code, and duration using slog.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// contentTypeJSON rejects POST, PUT and PATCH requests that carry a body
// without an application/json Content-Type. Body-less control calls pass.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if r.ContentLength != 0 && !strings.HasPrefix(ct, "application/json") {
				WriteError(w, http.StatusBadRequest, "invalid_request",
					"Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
