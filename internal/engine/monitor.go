package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/efreitasn/tradecore/internal/domain"
	"github.com/efreitasn/tradecore/internal/metrics"
)

// StatsSource is the view of a trading manager the monitor samples.
type StatsSource interface {
	Stats() domain.Stats
	Status() domain.Status
	IsHealthy() bool
	OptimizeMemory() bool
}

// Monitor periodically samples a StatsSource into the Prometheus exporter,
// logs health transitions and asks the source to reclaim idle memory.
type Monitor struct {
	interval time.Duration
	source   StatsSource
	exporter *metrics.Exporter
	logger   *slog.Logger

	mu      sync.Mutex
	healthy bool
	samples int
}

// NewMonitor creates a Monitor. exporter may be nil.
func NewMonitor(interval time.Duration, source StatsSource, exporter *metrics.Exporter, logger *slog.Logger) *Monitor {
	return &Monitor{
		interval: interval,
		source:   source,
		exporter: exporter,
		logger:   logger,
		healthy:  true,
	}
}

// Run samples at the configured interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.tick()
		}
	}
}

// tick takes one sample.
func (m *Monitor) tick() {
	status := m.source.Status()
	stats := m.source.Stats()
	healthy := m.source.IsHealthy()

	if m.exporter != nil {
		m.exporter.Observe(stats, status, healthy)
	}

	m.mu.Lock()
	changed := healthy != m.healthy
	m.healthy = healthy
	m.samples++
	m.mu.Unlock()

	if changed {
		level := slog.LevelInfo
		if !healthy {
			level = slog.LevelWarn
		}
		m.logger.Log(context.Background(), level, "health changed",
			slog.Bool("healthy", healthy),
			slog.String("status", status.String()),
			slog.Int64("active_orders", stats.ActiveOrders),
			slog.Float64("avg_latency_us", stats.AvgLatency),
		)
	}

	if status == domain.StatusRunning || status == domain.StatusPaused {
		m.source.OptimizeMemory()
	}
}

// Samples returns the number of ticks taken. Useful for testing.
func (m *Monitor) Samples() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.samples
}
