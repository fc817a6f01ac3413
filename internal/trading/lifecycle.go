package trading

import (
	"fmt"
	"log/slog"

	"github.com/efreitasn/tradecore/internal/domain"
	"github.com/efreitasn/tradecore/internal/pool"
)

func (m *Manager) transition(from, to domain.Status) bool {
	return m.status.CompareAndSwap(int32(from), int32(to))
}

// Start moves the manager from STARTING or PAUSED to RUNNING.
func (m *Manager) Start() bool {
	if m.closed.Load() {
		m.logger.Warn("start rejected: manager closed")
		return false
	}
	if m.transition(domain.StatusStarting, domain.StatusRunning) ||
		m.transition(domain.StatusPaused, domain.StatusRunning) {
		m.logger.Info("trading started")
		return true
	}
	m.logger.Warn("start rejected", slog.String("status", m.Status().String()))
	return false
}

// Pause moves the manager from RUNNING to PAUSED.
func (m *Manager) Pause() bool {
	if !m.transition(domain.StatusRunning, domain.StatusPaused) {
		return false
	}
	m.logger.Info("trading paused")
	return true
}

// Resume moves the manager from PAUSED to RUNNING.
func (m *Manager) Resume() bool {
	if !m.transition(domain.StatusPaused, domain.StatusRunning) {
		return false
	}
	m.logger.Info("trading resumed")
	return true
}

// Stop halts trading from RUNNING or PAUSED, force-rolls back every open
// transaction, resets pools and metrics, and leaves the manager in STARTING
// ready for another Start.
func (m *Manager) Stop() bool {
	if !m.transition(domain.StatusRunning, domain.StatusStopping) &&
		!m.transition(domain.StatusPaused, domain.StatusStopping) {
		return false
	}
	m.drain()

	m.txMu.Lock()
	defer m.txMu.Unlock()

	if err := m.cleanupLocked(); err != nil {
		m.logger.Error("cleanup failed during stop", slog.String("error", err.Error()))
	}
	m.status.Store(int32(domain.StatusStarting))
	m.logger.Info("trading stopped")
	return true
}

// Close stops a running manager and releases every transaction still held.
// A closed manager cannot be started again. Close never fails and is safe to
// call more than once.
func (m *Manager) Close() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("panic during close", slog.Any("panic", r))
		}
	}()

	if m.Status() == domain.StatusRunning {
		m.Stop()
	}
	m.status.Store(int32(domain.StatusStopping))
	m.drain()

	m.txMu.Lock()
	defer m.txMu.Unlock()

	if n := m.releaseTransactionsLocked(); n > 0 {
		m.logger.Warn("transactions released at close", slog.Int("count", n))
	}
	m.logger.Info("trading manager closed")
}

// cleanupLocked returns the manager to its freshly constructed state. The
// caller holds txMu.
func (m *Manager) cleanupLocked() (err error) {
	defer guard(&err)

	if n := m.releaseTransactionsLocked(); n > 0 {
		m.logger.Warn("pending transactions rolled back", slog.Int("count", n))
	}

	m.resetOrders()
	m.books.Reset()

	m.perf.Reset()
	m.maxLatency.Reset()
	m.activeOrders.Store(0)
	m.pendingTx.Store(0)
	m.totalTrades.Store(0)
	return nil
}

func (m *Manager) resetOrders() {
	m.orderMu.Lock()
	defer m.orderMu.Unlock()
	m.orders.Reset()
}

// releaseTransactionsLocked rolls back and ends every registered transaction
// and empties the owner registry. The caller holds txMu.
func (m *Manager) releaseTransactionsLocked() int {
	m.ownersMu.Lock()
	defer m.ownersMu.Unlock()

	n := 0
	for owner, node := range m.owners {
		if err := m.forceEnd(node); err != nil {
			m.logger.Error("failed to release transaction",
				slog.String("owner", string(owner)),
				slog.String("error", err.Error()),
			)
		}
		delete(m.owners, owner)
		decrementFloor(&m.pendingTx)
		n++
	}
	return n
}

func (m *Manager) forceEnd(node *pool.TxNode) (err error) {
	defer guard(&err)
	defer m.transactions.End(node)
	if node.Status == pool.TxPending && !m.transactions.Rollback(node) {
		return fmt.Errorf("rollback %s: %w", node.ID, domain.ErrNotPending)
	}
	return nil
}
