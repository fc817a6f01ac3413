package trading

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/efreitasn/tradecore/internal/domain"
	"github.com/efreitasn/tradecore/internal/pool"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// faultyOrders wraps an OrderPool and can be told to panic on Register.
type faultyOrders struct {
	*pool.OrderPool
	panicOnRegister atomic.Bool
}

func (f *faultyOrders) Register(id string, n *pool.OrderNode) error {
	if f.panicOnRegister.Load() {
		panic("register exploded")
	}
	return f.OrderPool.Register(id, n)
}

// faultyMarketData wraps a MarketDataPool and can be told to report
// exhaustion.
type faultyMarketData struct {
	*pool.MarketDataPool
	exhausted atomic.Bool
}

func (f *faultyMarketData) Allocate() []byte {
	if f.exhausted.Load() {
		return nil
	}
	return f.MarketDataPool.Allocate()
}

// faultyTransactions wraps a TransactionPool and can be told to refuse
// commits.
type faultyTransactions struct {
	*pool.TransactionPool
	failCommit atomic.Bool
}

func (f *faultyTransactions) Commit(n *pool.TxNode) bool {
	if f.failCommit.Load() {
		return false
	}
	return f.TransactionPool.Commit(n)
}

type fixture struct {
	m            *Manager
	orders       *faultyOrders
	marketData   *faultyMarketData
	transactions *faultyTransactions
}

func testConfig() Config {
	return Config{
		MaxOrders:          8,
		MaxSymbols:         4,
		EnableTransactions: true,
		MarketData:         pool.MarketDataConfig{QuoteSize: 8, BufferCapacity: 4, Buffers: 2},
	}
}

func buildFixture(cfg Config) (*fixture, error) {
	op, err := pool.NewOrderPool(pool.OrderConfig{Capacity: cfg.MaxOrders})
	if err != nil {
		return nil, err
	}
	mdCfg := cfg.MarketData
	if mdCfg == (pool.MarketDataConfig{}) {
		mdCfg = pool.DefaultMarketDataConfig()
	}
	mp, err := pool.NewMarketDataPool(mdCfg)
	if err != nil {
		return nil, err
	}
	txCap := cfg.MaxTransactions
	if txCap == 0 {
		txCap = cfg.MaxOrders
	}
	tp, err := pool.NewTransactionPool(pool.TransactionConfig{Capacity: txCap})
	if err != nil {
		return nil, err
	}

	f := &fixture{
		orders:       &faultyOrders{OrderPool: op},
		marketData:   &faultyMarketData{MarketDataPool: mp},
		transactions: &faultyTransactions{TransactionPool: tp},
	}
	f.m, err = New(cfg, discardLogger(),
		WithOrderAllocator(f.orders),
		WithMarketDataAllocator(f.marketData),
		WithTransactionAllocator(f.transactions),
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// newFixture builds a started manager over inspectable pools.
func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f, err := buildFixture(cfg)
	if err != nil {
		t.Fatalf("build fixture: %v", err)
	}
	t.Cleanup(f.m.Close)
	if !f.m.Start() {
		t.Fatal("expected Start to succeed")
	}
	return f
}

func testOrder(id, symbol string) domain.Order {
	return domain.NewOrder(id, symbol, 101.25, 10)
}

// assertClean checks that no pool node, counter or transaction is held.
func (f *fixture) assertClean(t *testing.T) {
	t.Helper()
	s := f.m.Stats()
	if s.ActiveOrders != 0 {
		t.Errorf("expected 0 active orders, got %d", s.ActiveOrders)
	}
	if s.PendingTransactions != 0 {
		t.Errorf("expected 0 pending transactions, got %d", s.PendingTransactions)
	}
	if got := f.orders.Stats().InUse; got != 0 {
		t.Errorf("expected 0 order nodes in use, got %d", got)
	}
	if got := f.transactions.Stats().InUse; got != 0 {
		t.Errorf("expected 0 transaction nodes in use, got %d", got)
	}
	if got := f.marketData.Stats().InUse; got != 0 {
		t.Errorf("expected 0 quote buffers in use, got %d", got)
	}
}
