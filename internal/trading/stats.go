package trading

import (
	"log/slog"

	"github.com/efreitasn/tradecore/internal/domain"
)

// Stats returns a point-in-time snapshot. Counters are read independently.
func (m *Manager) Stats() domain.Stats {
	orderRate, tradeRate := m.perf.Rates()
	return domain.Stats{
		ActiveOrders:        m.activeOrders.Load(),
		PendingTransactions: m.pendingTx.Load(),
		TotalTrades:         m.totalTrades.Load(),
		MemoryUsed:          m.memoryUsed(),
		AvgLatency:          m.perf.AvgLatency(),
		MaxLatency:          m.maxLatency.Load(),
		OrderRate:           orderRate,
		TradeRate:           tradeRate,
	}
}

func (m *Manager) memoryUsed() int64 {
	return m.orders.Stats().TotalMemoryUsed +
		m.marketData.Stats().TotalMemoryUsed +
		m.transactions.Stats().TotalMemoryUsed
}

// HasCapacity reports whether every pool has at least one free slot.
func (m *Manager) HasCapacity() bool {
	return m.orders.HasCapacity() &&
		m.marketData.HasCapacity() &&
		m.transactions.HasCapacity()
}

// IsHealthy reports whether the manager is running, every pool has room and
// the average latency is under one millisecond.
func (m *Manager) IsHealthy() bool {
	return m.Status() == domain.StatusRunning &&
		m.HasCapacity() &&
		m.perf.AvgLatency() < healthyLatency
}

// OptimizeMemory drops book-index entries for symbols with no resting orders.
// It only runs while the manager is RUNNING or PAUSED.
func (m *Manager) OptimizeMemory() bool {
	status := m.Status()
	if status != domain.StatusRunning && status != domain.StatusPaused {
		return false
	}

	before := m.memoryUsed()
	pruned := m.books.Prune()
	after := m.memoryUsed()

	m.logger.Debug("memory optimized",
		slog.Int64("memory_before", before),
		slog.Int64("memory_after", after),
		slog.Int("symbols_pruned", pruned),
		slog.Int("symbols_indexed", m.books.Len()),
		slog.Bool("symbol_capacity", m.books.HasCapacity()),
	)
	return true
}

// Symbols lists the symbols with a live book entry.
func (m *Manager) Symbols() []string {
	return m.books.Symbols()
}
