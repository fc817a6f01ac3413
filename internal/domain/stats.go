package domain

// Stats is a point-in-time snapshot of a trading manager. Counters are read
// individually, so the snapshot is not a consistent cut across all pools.
type Stats struct {
	ActiveOrders        int64   `json:"active_orders"`
	PendingTransactions int64   `json:"pending_transactions"`
	TotalTrades         int64   `json:"total_trades"`
	MemoryUsed          int64   `json:"memory_used"`
	AvgLatency          float64 `json:"avg_latency_us"`
	MaxLatency          float64 `json:"max_latency_us"`
	OrderRate           int64   `json:"order_rate"`
	TradeRate           int64   `json:"trade_rate"`
}
