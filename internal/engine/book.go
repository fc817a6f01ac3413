package engine

import (
	"sync"
	"time"

	"github.com/google/btree"

	"github.com/efreitasn/tradecore/internal/domain"
)

// SymbolEntry is the book index's record for one symbol.
type SymbolEntry struct {
	Symbol        string
	RestingOrders int
	Refreshes     uint64
	LastRefresh   time.Time
}

func symbolLess(a, b *SymbolEntry) bool {
	return a.Symbol < b.Symbol
}

// BookIndex tracks which symbols have live order books, how many orders rest
// on each and when each was last refreshed. It holds at most maxSymbols
// entries; matching and price levels live in the order-book component.
type BookIndex struct {
	mu         sync.RWMutex
	maxSymbols int
	tree       *btree.BTreeG[*SymbolEntry]
	now        func() time.Time
}

// NewBookIndex creates an index bounded to maxSymbols symbols.
func NewBookIndex(maxSymbols int) *BookIndex {
	const degree = 32
	return &BookIndex{
		maxSymbols: maxSymbols,
		tree:       btree.NewG[*SymbolEntry](degree, symbolLess),
		now:        time.Now,
	}
}

// entry returns the symbol's entry, creating it if there is room. Caller
// holds the write lock.
func (b *BookIndex) entry(symbol string) (*SymbolEntry, error) {
	if symbol == "" {
		return nil, domain.ErrEmptySymbol
	}
	if e, ok := b.tree.Get(&SymbolEntry{Symbol: symbol}); ok {
		return e, nil
	}
	if b.tree.Len() >= b.maxSymbols {
		return nil, domain.ErrSymbolLimit
	}
	e := &SymbolEntry{Symbol: symbol}
	b.tree.ReplaceOrInsert(e)
	return e, nil
}

// Refresh marks the symbol's book as updated and returns how long the
// refresh took. It fails for an empty symbol or when a new symbol would
// exceed the index bound.
func (b *BookIndex) Refresh(symbol string) (time.Duration, error) {
	start := b.now()

	b.mu.Lock()
	defer b.mu.Unlock()

	e, err := b.entry(symbol)
	if err != nil {
		return 0, err
	}
	e.Refreshes++
	e.LastRefresh = b.now()
	return e.LastRefresh.Sub(start), nil
}

// Attach counts one more resting order on symbol.
func (b *BookIndex) Attach(symbol string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, err := b.entry(symbol)
	if err != nil {
		return err
	}
	e.RestingOrders++
	return nil
}

// Detach counts one fewer resting order on symbol. It never goes below zero
// and is a no-op for unknown symbols.
func (b *BookIndex) Detach(symbol string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if e, ok := b.tree.Get(&SymbolEntry{Symbol: symbol}); ok && e.RestingOrders > 0 {
		e.RestingOrders--
	}
}

// Lookup returns a copy of the symbol's entry.
func (b *BookIndex) Lookup(symbol string) (SymbolEntry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.tree.Get(&SymbolEntry{Symbol: symbol})
	if !ok {
		return SymbolEntry{}, false
	}
	return *e, true
}

// Symbols lists indexed symbols in ascending order.
func (b *BookIndex) Symbols() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]string, 0, b.tree.Len())
	b.tree.Ascend(func(e *SymbolEntry) bool {
		out = append(out, e.Symbol)
		return true
	})
	return out
}

// Len returns the number of indexed symbols.
func (b *BookIndex) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.Len()
}

// HasCapacity reports whether a new symbol could still be indexed.
func (b *BookIndex) HasCapacity() bool {
	return b.Len() < b.maxSymbols
}

// Prune drops symbols with no resting orders and returns how many went.
func (b *BookIndex) Prune() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	var idle []*SymbolEntry
	b.tree.Ascend(func(e *SymbolEntry) bool {
		if e.RestingOrders == 0 {
			idle = append(idle, e)
		}
		return true
	})
	for _, e := range idle {
		b.tree.Delete(e)
	}
	return len(idle)
}

// Reset empties the index.
func (b *BookIndex) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tree.Clear(false)
}
