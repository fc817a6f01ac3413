package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/efreitasn/tradecore/internal/domain"
)

func TestExporter_Observe(t *testing.T) {
	e := NewExporter("test")
	e.Observe(domain.Stats{
		ActiveOrders:        3,
		PendingTransactions: 1,
		TotalTrades:         7,
		MemoryUsed:          4096,
		AvgLatency:          12.5,
		MaxLatency:          40,
		OrderRate:           2,
		TradeRate:           1,
	}, domain.StatusRunning, true)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"active_orders", testutil.ToFloat64(e.ActiveOrders), 3},
		{"pending_transactions", testutil.ToFloat64(e.PendingTransactions), 1},
		{"trades", testutil.ToFloat64(e.TotalTrades), 7},
		{"pool_memory_bytes", testutil.ToFloat64(e.MemoryUsed), 4096},
		{"latency_avg", testutil.ToFloat64(e.AvgLatency), 12.5},
		{"latency_max", testutil.ToFloat64(e.MaxLatency), 40},
		{"status", testutil.ToFloat64(e.Status), 1},
		{"healthy", testutil.ToFloat64(e.Healthy), 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	e.Observe(domain.Stats{}, domain.StatusPaused, false)
	if got := testutil.ToFloat64(e.Healthy); got != 0 {
		t.Errorf("healthy = %v, want 0", got)
	}
}

func TestExporter_HandlerServesRegistry(t *testing.T) {
	e := NewExporter("tradecore")
	e.ObserveLatency(42)

	rr := httptest.NewRecorder()
	e.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rr.Body)

	if rr.Code != 200 {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	for _, name := range []string{
		"tradecore_active_orders",
		"tradecore_operation_latency_microseconds_count 1",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %q", name)
		}
	}
}

func TestNewExporter_IndependentRegistries(t *testing.T) {
	a := NewExporter("dup")
	b := NewExporter("dup")
	if a.Registry() == b.Registry() {
		t.Fatal("exporters must not share a registry")
	}
}
