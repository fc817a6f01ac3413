package engine

import (
	"errors"
	"testing"

	"github.com/efreitasn/tradecore/internal/domain"
	"pgregory.net/rapid"
)

// The index never holds more than maxSymbols entries, and a refresh of a new
// symbol fails exactly when the index is full.
func TestProperty_BookIndexRespectsSymbolBound(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		maxSymbols := rapid.IntRange(1, 10).Draw(t, "maxSymbols")
		symbols := rapid.SliceOfN(rapid.SampledFrom([]string{
			"AAPL", "MSFT", "GOOG", "TSLA", "AMZN", "META", "NFLX", "NVDA", "ORCL", "IBM", "INTC", "AMD",
		}), 1, 60).Draw(t, "symbols")

		b := NewBookIndex(maxSymbols)
		seen := make(map[string]bool)

		for _, s := range symbols {
			full := len(seen) >= maxSymbols
			_, err := b.Refresh(s)

			switch {
			case seen[s]:
				if err != nil {
					t.Fatalf("refresh of known symbol %s failed: %v", s, err)
				}
			case full:
				if !errors.Is(err, domain.ErrSymbolLimit) {
					t.Fatalf("expected ErrSymbolLimit for %s, got %v", s, err)
				}
			default:
				if err != nil {
					t.Fatalf("refresh of new symbol %s failed: %v", s, err)
				}
				seen[s] = true
			}

			if b.Len() > maxSymbols {
				t.Fatalf("index holds %d symbols, bound is %d", b.Len(), maxSymbols)
			}
		}

		if b.Len() != len(seen) {
			t.Fatalf("expected %d symbols, got %d", len(seen), b.Len())
		}
	})
}
