// Package trading implements the trading core's resource manager: it owns
// the order, market-data and transaction pools, sequences per-owner
// transactions, and keeps the latency and throughput counters that feed
// health reporting.
package trading

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/efreitasn/tradecore/internal/domain"
	"github.com/efreitasn/tradecore/internal/engine"
	"github.com/efreitasn/tradecore/internal/metrics"
	"github.com/efreitasn/tradecore/internal/pool"
)

// healthyLatency is the average latency, in microseconds, at or above which
// the manager reports itself unhealthy.
const healthyLatency = 1000.0

// OrderAllocator supplies order nodes.
type OrderAllocator interface {
	Allocate() *pool.OrderNode
	Deallocate(n *pool.OrderNode)
	Register(id string, n *pool.OrderNode) error
	Lookup(id string) (*pool.OrderNode, bool)
	HasCapacity() bool
	Stats() pool.Stats
	Reset()
}

// MarketDataAllocator supplies quote buffers.
type MarketDataAllocator interface {
	Allocate() []byte
	Deallocate(buf []byte, size int) error
	HasCapacity() bool
	Stats() pool.Stats
	Config() pool.MarketDataConfig
}

// TransactionAllocator supplies transaction nodes.
type TransactionAllocator interface {
	Begin() *pool.TxNode
	Register(id string, n *pool.TxNode)
	Commit(n *pool.TxNode) bool
	Rollback(n *pool.TxNode) bool
	End(n *pool.TxNode)
	HasCapacity() bool
	Stats() pool.Stats
}

// LatencyObserver receives every latency sample the manager records, in
// microseconds. *metrics.Exporter satisfies it.
type LatencyObserver interface {
	ObserveLatency(us float64)
}

// Config sizes a Manager.
type Config struct {
	MaxOrders          int
	MaxSymbols         int
	EnableTransactions bool

	// MaxTransactions defaults to MaxOrders when zero.
	MaxTransactions int
	// MarketData defaults to pool.DefaultMarketDataConfig when zero.
	MarketData pool.MarketDataConfig
}

// Option customises a Manager at construction.
type Option func(*Manager)

// WithOrderAllocator replaces the default order pool.
func WithOrderAllocator(a OrderAllocator) Option {
	return func(m *Manager) { m.orders = a }
}

// WithMarketDataAllocator replaces the default market-data pool.
func WithMarketDataAllocator(a MarketDataAllocator) Option {
	return func(m *Manager) { m.marketData = a }
}

// WithTransactionAllocator replaces the default transaction pool.
func WithTransactionAllocator(a TransactionAllocator) Option {
	return func(m *Manager) { m.transactions = a }
}

// WithLatencyObserver forwards latency samples to o.
func WithLatencyObserver(o LatencyObserver) Option {
	return func(m *Manager) { m.observer = o }
}

// Manager coordinates the pools, transactions and metrics of one trading
// core. All methods are safe for concurrent use.
//
// Lock order is txMu, then ownersMu or orderMu. Only Stop holds txMu and
// orderMu together.
type Manager struct {
	cfg    Config
	logger *slog.Logger

	orders       OrderAllocator
	marketData   MarketDataAllocator
	transactions TransactionAllocator
	books        *engine.BookIndex
	observer     LatencyObserver

	status   atomic.Int32
	closed   atomic.Bool
	inflight atomic.Int64

	activeOrders atomic.Int64
	pendingTx    atomic.Int64
	totalTrades  atomic.Int64
	perf         *metrics.Performance
	maxLatency   metrics.MaxGauge

	txMu     sync.Mutex
	ownersMu sync.Mutex
	owners   map[domain.OwnerID]*pool.TxNode
	orderMu  sync.Mutex
}

// New builds a Manager in the STARTING state. It fails with
// domain.ErrInvalidConfig when MaxOrders or MaxSymbols is not positive.
func New(cfg Config, logger *slog.Logger, opts ...Option) (*Manager, error) {
	if cfg.MaxOrders <= 0 || cfg.MaxSymbols <= 0 {
		return nil, fmt.Errorf("max orders %d and max symbols %d must be positive: %w",
			cfg.MaxOrders, cfg.MaxSymbols, domain.ErrInvalidConfig)
	}
	if cfg.MaxTransactions < 0 {
		return nil, fmt.Errorf("max transactions %d must not be negative: %w", cfg.MaxTransactions, domain.ErrInvalidConfig)
	}
	if cfg.MaxTransactions == 0 {
		cfg.MaxTransactions = cfg.MaxOrders
	}
	if cfg.MarketData == (pool.MarketDataConfig{}) {
		cfg.MarketData = pool.DefaultMarketDataConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		cfg:    cfg,
		logger: logger,
		books:  engine.NewBookIndex(cfg.MaxSymbols),
		perf:   metrics.NewPerformance(),
		owners: make(map[domain.OwnerID]*pool.TxNode),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.orders == nil {
		p, err := pool.NewOrderPool(pool.OrderConfig{Capacity: cfg.MaxOrders})
		if err != nil {
			return nil, fmt.Errorf("order pool: %w", err)
		}
		m.orders = p
	}
	if m.marketData == nil {
		p, err := pool.NewMarketDataPool(cfg.MarketData)
		if err != nil {
			return nil, fmt.Errorf("market data pool: %w", err)
		}
		m.marketData = p
	}
	if m.transactions == nil {
		p, err := pool.NewTransactionPool(pool.TransactionConfig{Capacity: cfg.MaxTransactions})
		if err != nil {
			return nil, fmt.Errorf("transaction pool: %w", err)
		}
		m.transactions = p
	}

	m.status.Store(int32(domain.StatusStarting))

	m.logger.Info("trading manager created",
		slog.Int("max_orders", cfg.MaxOrders),
		slog.Int("max_symbols", cfg.MaxSymbols),
		slog.Int("max_transactions", cfg.MaxTransactions),
		slog.Bool("transactions", cfg.EnableTransactions),
	)
	return m, nil
}

// Status returns the current lifecycle state.
func (m *Manager) Status() domain.Status {
	return domain.Status(m.status.Load())
}

// Config returns the effective configuration after defaults were applied.
func (m *Manager) Config() Config {
	return m.cfg
}

// enter admits an operation if the manager is running. Every successful
// enter must be paired with leave.
func (m *Manager) enter() bool {
	return m.admit(domain.StatusRunning)
}

// enterFinish admits commit and rollback, which an owner may still issue
// while the manager is paused.
func (m *Manager) enterFinish() bool {
	return m.admit(domain.StatusRunning, domain.StatusPaused)
}

// admit counts the caller in flight when the status is one of allowed.
func (m *Manager) admit(allowed ...domain.Status) bool {
	m.inflight.Add(1)
	status := m.Status()
	for _, s := range allowed {
		if status == s {
			return true
		}
	}
	m.inflight.Add(-1)
	return false
}

func (m *Manager) leave() {
	m.inflight.Add(-1)
}

// drain waits for admitted operations to finish. The status must already
// have left RUNNING so no new operation is admitted.
func (m *Manager) drain() {
	for m.inflight.Load() > 0 {
		time.Sleep(10 * time.Microsecond)
	}
}

// decrementFloor subtracts one from c without going below zero.
func decrementFloor(c *atomic.Int64) {
	for {
		cur := c.Load()
		if cur <= 0 {
			return
		}
		if c.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

// guard converts a panic in the enclosing operation into an error. It must
// be deferred before any compensation so that compensations run first.
func guard(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: panic: %v", domain.ErrOperationAborted, r)
	}
}

func micros(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / float64(time.Microsecond)
}
