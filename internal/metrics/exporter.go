package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/efreitasn/tradecore/internal/domain"
)

// Exporter publishes manager snapshots as Prometheus metrics on its own
// registry, so several managers (or tests) can coexist in one process.
type Exporter struct {
	registry *prometheus.Registry

	ActiveOrders        prometheus.Gauge
	PendingTransactions prometheus.Gauge
	TotalTrades         prometheus.Gauge
	MemoryUsed          prometheus.Gauge
	AvgLatency          prometheus.Gauge
	MaxLatency          prometheus.Gauge
	OrderRate           prometheus.Gauge
	TradeRate           prometheus.Gauge
	Healthy             prometheus.Gauge
	Status              prometheus.Gauge

	Latency prometheus.Histogram
}

// NewExporter registers all collectors under namespace.
func NewExporter(namespace string) *Exporter {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	}

	return &Exporter{
		registry:            reg,
		ActiveOrders:        gauge("active_orders", "Orders currently holding an order-pool node"),
		PendingTransactions: gauge("pending_transactions", "Transactions begun and not yet ended"),
		TotalTrades:         gauge("trades", "Trade prints seen since the last reset"),
		MemoryUsed:          gauge("pool_memory_bytes", "Bytes in use across the order, market-data and transaction pools"),
		AvgLatency:          gauge("latency_avg_microseconds", "Running mean of recorded latencies"),
		MaxLatency:          gauge("latency_max_microseconds", "Maximum recorded latency since the last reset"),
		OrderRate:           gauge("order_rate", "Orders per second since the last metrics update"),
		TradeRate:           gauge("trade_rate", "Trades per second since the last metrics update"),
		Healthy:             gauge("healthy", "1 when the manager reports healthy"),
		Status:              gauge("status", "Operational status: 0 starting, 1 running, 2 paused, 3 stopping"),
		Latency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_microseconds",
			Help:      "Latency of book refreshes, cancellations and market-data handling",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 10000},
		}),
	}
}

// Observe copies a snapshot into the gauges.
func (e *Exporter) Observe(s domain.Stats, status domain.Status, healthy bool) {
	e.ActiveOrders.Set(float64(s.ActiveOrders))
	e.PendingTransactions.Set(float64(s.PendingTransactions))
	e.TotalTrades.Set(float64(s.TotalTrades))
	e.MemoryUsed.Set(float64(s.MemoryUsed))
	e.AvgLatency.Set(s.AvgLatency)
	e.MaxLatency.Set(s.MaxLatency)
	e.OrderRate.Set(float64(s.OrderRate))
	e.TradeRate.Set(float64(s.TradeRate))
	e.Status.Set(float64(status))
	if healthy {
		e.Healthy.Set(1)
	} else {
		e.Healthy.Set(0)
	}
}

// ObserveLatency records one latency sample in microseconds.
func (e *Exporter) ObserveLatency(us float64) {
	e.Latency.Observe(us)
}

// Registry exposes the underlying registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler serves the registry in the Prometheus text format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{Registry: e.registry})
}
