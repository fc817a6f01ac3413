package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketDataKind distinguishes quote updates from trade prints.
type MarketDataKind string

const (
	MarketDataQuote MarketDataKind = "quote"
	MarketDataTrade MarketDataKind = "trade"
)

// MarketData is a single inbound market-data event. The core does not decode
// prices; it only refreshes the symbol's book entry and, for trade prints,
// bumps the trade counters.
type MarketData struct {
	Symbol    string          `json:"symbol"`
	Kind      MarketDataKind  `json:"kind"`
	Price     decimal.Decimal `json:"price"`
	Size      decimal.Decimal `json:"size"`
	Timestamp time.Time       `json:"timestamp"`
}

// IsTrade reports whether the event is a trade print.
func (m MarketData) IsTrade() bool {
	return m.Kind == MarketDataTrade
}
