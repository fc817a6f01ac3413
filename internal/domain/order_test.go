package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestOrder_Validate_Valid(t *testing.T) {
	o := NewOrder("A1", "X", 10.0, 5.0)
	if err := o.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestOrder_Validate_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		order Order
	}{
		{"empty id", NewOrder("", "X", 10, 5)},
		{"empty symbol", NewOrder("A1", "", 10, 5)},
		{"zero price", NewOrder("A1", "X", 0, 5)},
		{"negative price", NewOrder("A1", "X", -1, 5)},
		{"zero quantity", NewOrder("A1", "X", 10, 0)},
		{"negative quantity", NewOrder("A1", "X", 10, -0.5)},
		{"zero value", Order{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.order.Validate()
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
		})
	}
}

func TestNewOrder_KeepsDecimalPrecision(t *testing.T) {
	o := NewOrder("A1", "X", 0.1, 3)
	want := decimal.RequireFromString("0.1")
	if !o.Price.Equal(want) {
		t.Errorf("Price = %s, want %s", o.Price, want)
	}
}
