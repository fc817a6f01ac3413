package domain

import (
	"github.com/shopspring/decimal"
)

// Order is an order submission as received from a caller. It carries only
// the fields the core needs for allocation and bookkeeping; sides, time in
// force and matching belong to the order-book component.
type Order struct {
	ID       string          `json:"order_id"`
	Symbol   string          `json:"symbol"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// NewOrder builds an Order from float inputs.
func NewOrder(id, symbol string, price, quantity float64) Order {
	return Order{
		ID:       id,
		Symbol:   symbol,
		Price:    decimal.NewFromFloat(price),
		Quantity: decimal.NewFromFloat(quantity),
	}
}

// Validate checks that the order has a non-empty identifier and symbol and a
// strictly positive price and quantity.
func (o Order) Validate() error {
	if o.ID == "" {
		return &ValidationError{Message: "order id is required"}
	}
	if o.Symbol == "" {
		return &ValidationError{Message: "symbol is required"}
	}
	if !o.Price.IsPositive() {
		return &ValidationError{Message: "price must be greater than 0"}
	}
	if !o.Quantity.IsPositive() {
		return &ValidationError{Message: "quantity must be greater than 0"}
	}
	return nil
}
