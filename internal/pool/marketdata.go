package pool

import (
	"fmt"
	"sync"

	"github.com/efreitasn/tradecore/internal/domain"
)

// MarketDataConfig sizes a MarketDataPool. Each buffer holds BufferCapacity
// quotes of QuoteSize bytes; that product is the pool's allocation unit.
type MarketDataConfig struct {
	QuoteSize      int
	BufferCapacity int
	Buffers        int
}

// DefaultMarketDataConfig returns the sizing used when none is configured.
func DefaultMarketDataConfig() MarketDataConfig {
	return MarketDataConfig{
		QuoteSize:      64,
		BufferCapacity: 16,
		Buffers:        256,
	}
}

// UnitSize is the byte size of one buffer.
func (c MarketDataConfig) UnitSize() int {
	return c.QuoteSize * c.BufferCapacity
}

// MarketDataPool hands out fixed-size quote buffers carved from one slab.
type MarketDataPool struct {
	mu    sync.Mutex
	cfg   MarketDataConfig
	slab  []byte
	bases map[*byte]int
	inUse []bool
	free  []int
	counters
}

// NewMarketDataPool allocates the slab for cfg.Buffers buffers.
func NewMarketDataPool(cfg MarketDataConfig) (*MarketDataPool, error) {
	if cfg.QuoteSize <= 0 || cfg.BufferCapacity <= 0 {
		return nil, fmt.Errorf("market data quote size %d and buffer capacity %d must be positive: %w",
			cfg.QuoteSize, cfg.BufferCapacity, domain.ErrInvalidConfig)
	}
	if err := checkCapacity("market data pool", cfg.Buffers); err != nil {
		return nil, err
	}

	unit := cfg.UnitSize()
	p := &MarketDataPool{
		cfg:   cfg,
		slab:  make([]byte, unit*cfg.Buffers),
		bases: make(map[*byte]int, cfg.Buffers),
		inUse: make([]bool, cfg.Buffers),
		free:  make([]int, 0, cfg.Buffers),
	}
	for i := cfg.Buffers - 1; i >= 0; i-- {
		p.bases[&p.slab[i*unit]] = i
		p.free = append(p.free, i)
	}
	return p, nil
}

// Config returns the pool's sizing.
func (p *MarketDataPool) Config() MarketDataConfig {
	return p.cfg
}

// Allocate returns a zeroed buffer of UnitSize bytes, or nil when exhausted.
// The buffer's capacity is clamped so appends cannot spill into a neighbour.
func (p *MarketDataPool) Allocate() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) == 0 {
		p.failures++
		return nil
	}
	i := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.inUse[i] = true
	p.allocations++

	unit := p.cfg.UnitSize()
	lo, hi := i*unit, (i+1)*unit
	return p.slab[lo:hi:hi]
}

// Deallocate returns buf to the pool. size must equal the allocation unit.
func (p *MarketDataPool) Deallocate(buf []byte, size int) error {
	if size != p.cfg.UnitSize() {
		return fmt.Errorf("deallocate %d bytes, unit is %d: %w", size, p.cfg.UnitSize(), domain.ErrBufferSize)
	}
	if len(buf) == 0 {
		return domain.ErrForeignNode
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	i, ok := p.bases[&buf[0]]
	if !ok || !p.inUse[i] {
		return domain.ErrForeignNode
	}
	clear(buf[:cap(buf)])
	p.inUse[i] = false
	p.free = append(p.free, i)
	p.deallocations++
	return nil
}

// HasCapacity reports whether at least one buffer is free.
func (p *MarketDataPool) HasCapacity() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free) > 0
}

// Stats returns a usage snapshot.
func (p *MarketDataPool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats(p.cfg.Buffers, p.cfg.Buffers-len(p.free), int64(p.cfg.UnitSize()))
}
