package trading

import (
	"math"
	"testing"

	"github.com/efreitasn/tradecore/internal/domain"
)

type recordingObserver struct {
	samples []float64
}

func (r *recordingObserver) ObserveLatency(us float64) {
	r.samples = append(r.samples, us)
}

func TestManager_UpdateMetrics(t *testing.T) {
	obs := &recordingObserver{}
	m, err := New(testConfig(), discardLogger(), WithLatencyObserver(obs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer m.Close()

	for _, l := range []float64{10, 20, 30} {
		m.UpdateMetrics(l)
	}

	s := m.Stats()
	if math.Abs(s.AvgLatency-20) > 1e-9 {
		t.Errorf("expected avg 20, got %v", s.AvgLatency)
	}
	if s.MaxLatency != 30 {
		t.Errorf("expected max 30, got %v", s.MaxLatency)
	}
	if len(obs.samples) != 3 {
		t.Errorf("expected 3 observed samples, got %d", len(obs.samples))
	}
	// Rates use whole seconds since the last update.
	if s.OrderRate != 0 || s.TradeRate != 0 {
		t.Errorf("expected zero rates within the first second, got %d/%d", s.OrderRate, s.TradeRate)
	}
}

func TestManager_IsHealthy(t *testing.T) {
	f, err := buildFixture(testConfig())
	if err != nil {
		t.Fatalf("build fixture: %v", err)
	}
	m := f.m
	defer m.Close()

	if m.IsHealthy() {
		t.Error("a manager that is not running is unhealthy")
	}

	m.Start()
	if !m.IsHealthy() {
		t.Error("expected a fresh running manager to be healthy")
	}

	m.UpdateMetrics(5000)
	if m.IsHealthy() {
		t.Error("expected average latency over 1ms to be unhealthy")
	}
}

func TestManager_IsHealthy_RequiresCapacity(t *testing.T) {
	cfg := testConfig()
	cfg.MaxOrders = 1
	cfg.EnableTransactions = false
	f := newFixture(t, cfg)

	if !f.m.SubmitOrder("", testOrder("o1", "AAPL")) {
		t.Fatal("submit failed")
	}
	if f.m.IsHealthy() {
		t.Error("expected unhealthy with an exhausted order pool")
	}
	f.m.CancelOrder("", "o1")
	if !f.m.IsHealthy() {
		t.Error("expected healthy once capacity returns")
	}
}

func TestManager_Stats_MemoryUsed(t *testing.T) {
	f := newFixture(t, testConfig())
	before := f.m.Stats().MemoryUsed

	if !f.m.SubmitOrder("alice", testOrder("o1", "AAPL")) {
		t.Fatal("submit failed")
	}
	if !f.m.BeginTransaction("bob") {
		t.Fatal("begin failed")
	}

	after := f.m.Stats().MemoryUsed
	want := f.orders.Stats().TotalMemoryUsed + f.transactions.Stats().TotalMemoryUsed + f.marketData.Stats().TotalMemoryUsed
	if after != want {
		t.Errorf("expected memory used %d, got %d", want, after)
	}
	if after <= before {
		t.Errorf("expected memory used to grow, got %d then %d", before, after)
	}
}

func TestManager_OptimizeMemory(t *testing.T) {
	f, err := buildFixture(testConfig())
	if err != nil {
		t.Fatalf("build fixture: %v", err)
	}
	m := f.m
	defer m.Close()

	if m.OptimizeMemory() {
		t.Error("optimize should be refused before start")
	}

	m.Start()
	m.HandleMarketData(domain.MarketData{Symbol: "AAPL", Kind: domain.MarketDataQuote})
	m.HandleMarketData(domain.MarketData{Symbol: "MSFT", Kind: domain.MarketDataQuote})
	if !m.SubmitOrder("alice", testOrder("o1", "GOOG")) {
		t.Fatal("submit failed")
	}
	if n := len(m.Symbols()); n != 3 {
		t.Fatalf("expected 3 symbols, got %d", n)
	}

	m.Pause()
	if !m.OptimizeMemory() {
		t.Fatal("optimize should run while paused")
	}

	got := m.Symbols()
	if len(got) != 1 || got[0] != "GOOG" {
		t.Errorf("expected only GOOG to survive, got %v", got)
	}
}
