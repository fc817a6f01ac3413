package trading

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/efreitasn/tradecore/internal/domain"
	"github.com/efreitasn/tradecore/internal/pool"
)

// SubmitOrder validates order, takes a node for it from the order pool,
// registers it and refreshes the symbol's book. With transactions enabled the
// work is bracketed by a transaction owned by owner. On failure nothing the
// call allocated or counted survives.
func (m *Manager) SubmitOrder(owner domain.OwnerID, order domain.Order) bool {
	if !m.enter() {
		m.logger.Debug("order rejected",
			slog.String("order_id", order.ID),
			slog.String("error", domain.ErrNotRunning.Error()),
		)
		return false
	}
	defer m.leave()

	if err := order.Validate(); err != nil {
		m.logger.Warn("order validation failed",
			slog.String("owner", string(owner)),
			slog.String("order_id", order.ID),
			slog.String("symbol", order.Symbol),
			slog.String("price", order.Price.String()),
			slog.String("quantity", order.Quantity.String()),
			slog.String("error", err.Error()),
		)
		return false
	}

	if err := m.submitOrder(owner, order); err != nil {
		m.logger.Warn("order submission failed",
			slog.String("owner", string(owner)),
			slog.String("order_id", order.ID),
			slog.String("symbol", order.Symbol),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

func (m *Manager) submitOrder(owner domain.OwnerID, order domain.Order) (err error) {
	defer guard(&err)

	txOpen := false
	if m.cfg.EnableTransactions {
		if err := m.beginTransaction(owner); err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		txOpen = true
	}
	defer func() {
		if txOpen {
			m.rollbackQuietly(owner)
		}
	}()

	node := m.allocateOrder()
	if node == nil {
		return fmt.Errorf("order pool: %w", domain.ErrPoolExhausted)
	}

	kept, attached, counted := false, false, false
	defer func() {
		if kept {
			return
		}
		if counted {
			decrementFloor(&m.activeOrders)
		}
		if attached {
			m.books.Detach(order.Symbol)
		}
		m.orders.Deallocate(node)
	}()

	node.Symbol = order.Symbol
	node.Price = order.Price
	node.Quantity = order.Quantity
	if err := m.orders.Register(order.ID, node); err != nil {
		return fmt.Errorf("register order: %w", err)
	}

	if err := m.refreshBook(order.Symbol); err != nil {
		return fmt.Errorf("refresh book: %w", err)
	}
	if err := m.books.Attach(order.Symbol); err != nil {
		return fmt.Errorf("attach order: %w", err)
	}
	attached = true

	m.activeOrders.Add(1)
	counted = true

	if txOpen {
		txOpen = false
		if err := m.commitTransaction(owner); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}
	kept = true
	return nil
}

// CancelOrder releases the node registered under orderID. An unknown ID is
// a successful no-op. With transactions enabled owner's transaction must
// commit before the node is released.
func (m *Manager) CancelOrder(owner domain.OwnerID, orderID string) bool {
	if !m.enter() {
		m.logger.Debug("cancel rejected",
			slog.String("order_id", orderID),
			slog.String("error", domain.ErrNotRunning.Error()),
		)
		return false
	}
	defer m.leave()

	if err := m.cancelOrder(owner, orderID); err != nil {
		m.logger.Warn("order cancellation failed",
			slog.String("owner", string(owner)),
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

func (m *Manager) cancelOrder(owner domain.OwnerID, orderID string) (err error) {
	defer guard(&err)

	start := time.Now()

	if m.cfg.EnableTransactions {
		if err := m.beginTransaction(owner); err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		// A failed commit still ends the node, so there is nothing to roll back.
		if err := m.commitTransaction(owner); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}

	// The node is released only once the commit has succeeded, so a failed
	// cancel leaves the order resting.
	if released := m.releaseOrder(orderID); !released {
		m.logger.Debug("cancel of unknown order", slog.String("order_id", orderID))
	}

	m.UpdateMetrics(micros(time.Since(start)))
	return nil
}

func (m *Manager) allocateOrder() *pool.OrderNode {
	m.orderMu.Lock()
	defer m.orderMu.Unlock()
	return m.orders.Allocate()
}

// releaseOrder returns the node registered under orderID to the pool.
func (m *Manager) releaseOrder(orderID string) bool {
	symbol, ok := m.takeOrder(orderID)
	if !ok {
		return false
	}
	m.books.Detach(symbol)
	decrementFloor(&m.activeOrders)
	return true
}

// takeOrder looks up and deallocates under orderMu, so a concurrent cancel of
// the same ID cannot free a node that was reallocated in between.
func (m *Manager) takeOrder(orderID string) (string, bool) {
	m.orderMu.Lock()
	defer m.orderMu.Unlock()

	node, ok := m.orders.Lookup(orderID)
	if !ok {
		return "", false
	}
	symbol := node.Symbol
	m.orders.Deallocate(node)
	return symbol, true
}

// HandleMarketData stages data in a quote buffer and refreshes the symbol's
// book. Trade prints also count toward the trade totals. It is a no-op when
// the manager is not running or no buffer is free.
func (m *Manager) HandleMarketData(data domain.MarketData) {
	if !m.enter() {
		return
	}
	defer m.leave()

	if err := m.handleMarketData(data); err != nil {
		m.logger.Warn("market data handling failed",
			slog.String("symbol", data.Symbol),
			slog.String("kind", string(data.Kind)),
			slog.String("error", err.Error()),
		)
	}
}

func (m *Manager) handleMarketData(data domain.MarketData) (err error) {
	defer guard(&err)

	start := time.Now()

	buf := m.marketData.Allocate()
	if buf == nil {
		m.logger.Debug("market data dropped: no quote buffer", slog.String("symbol", data.Symbol))
		return nil
	}
	defer func() {
		if err == nil {
			m.UpdateMetrics(micros(time.Since(start)))
		}
	}()
	cfg := m.marketData.Config()
	defer func() {
		if derr := m.marketData.Deallocate(buf, cfg.QuoteSize*cfg.BufferCapacity); derr != nil && err == nil {
			err = fmt.Errorf("release quote buffer: %w", derr)
		}
	}()

	copy(buf, data.Symbol)

	if err := m.refreshBook(data.Symbol); err != nil {
		return fmt.Errorf("refresh book: %w", err)
	}
	if data.IsTrade() {
		m.totalTrades.Add(1)
		m.perf.RecordTrade()
	}
	return nil
}

// refreshBook refreshes symbol's book entry and records how long it took.
func (m *Manager) refreshBook(symbol string) error {
	elapsed, err := m.books.Refresh(symbol)
	if err != nil {
		return err
	}
	m.UpdateMetrics(micros(elapsed))
	return nil
}

// UpdateMetrics folds one latency sample, in microseconds, into the running
// mean and the maximum.
func (m *Manager) UpdateMetrics(latency float64) {
	m.perf.Record(latency)
	m.maxLatency.Observe(latency)
	if m.observer != nil {
		m.observer.ObserveLatency(latency)
	}
}
