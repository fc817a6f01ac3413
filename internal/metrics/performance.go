// Package metrics holds the latency and throughput accounting shared by the
// trading core, and exports it to Prometheus.
package metrics

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Performance keeps a running latency mean and order/trade counters. The mean
// is updated incrementally; no latency history is stored.
type Performance struct {
	mu         sync.Mutex
	avgLatency float64
	orderCount int64
	tradeCount int64
	lastUpdate time.Time
	now        func() time.Time
}

// PerformanceSnapshot is a copy of Performance at one instant.
type PerformanceSnapshot struct {
	AvgLatency float64
	OrderCount int64
	TradeCount int64
	LastUpdate time.Time
}

// NewPerformance returns a zeroed record stamped with the current time.
func NewPerformance() *Performance {
	return newPerformance(time.Now)
}

func newPerformance(now func() time.Time) *Performance {
	return &Performance{lastUpdate: now(), now: now}
}

// Record folds one latency sample into the mean and counts it as an order.
func (p *Performance) Record(latency float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.avgLatency += (latency - p.avgLatency) / float64(p.orderCount+1)
	p.orderCount++
	p.lastUpdate = p.now()
}

// RecordTrade counts one trade.
func (p *Performance) RecordTrade() {
	p.mu.Lock()
	p.tradeCount++
	p.mu.Unlock()
}

// AvgLatency returns the current running mean.
func (p *Performance) AvgLatency() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.avgLatency
}

// Snapshot copies the record.
func (p *Performance) Snapshot() PerformanceSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PerformanceSnapshot{
		AvgLatency: p.avgLatency,
		OrderCount: p.orderCount,
		TradeCount: p.tradeCount,
		LastUpdate: p.lastUpdate,
	}
}

// Rates derives order and trade rates from the whole seconds elapsed since
// the last recorded latency. This is a time-since-last-update figure, not a
// sliding window; both rates are zero within the first second.
func (p *Performance) Rates() (orderRate, tradeRate int64) {
	s := p.Snapshot()
	elapsed := int64(p.now().Sub(s.LastUpdate) / time.Second)
	if elapsed <= 0 {
		return 0, 0
	}
	return s.OrderCount / elapsed, s.TradeCount / elapsed
}

// Reset zeroes the record and restamps it.
func (p *Performance) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.avgLatency = 0
	p.orderCount = 0
	p.tradeCount = 0
	p.lastUpdate = p.now()
}

// MaxGauge is a lock-free running maximum over float64 samples.
type MaxGauge struct {
	bits atomic.Uint64
}

// Observe raises the maximum to v if v exceeds it and reports whether it did.
func (g *MaxGauge) Observe(v float64) bool {
	for {
		cur := g.bits.Load()
		if v <= math.Float64frombits(cur) {
			return false
		}
		if g.bits.CompareAndSwap(cur, math.Float64bits(v)) {
			return true
		}
	}
}

// Load returns the current maximum.
func (g *MaxGauge) Load() float64 {
	return math.Float64frombits(g.bits.Load())
}

// Reset sets the maximum back to zero.
func (g *MaxGauge) Reset() {
	g.bits.Store(0)
}
