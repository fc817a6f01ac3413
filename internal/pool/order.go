package pool

import (
	"sync"
	"unsafe"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/tradecore/internal/domain"
)

// OrderNode is a pool-owned record for one active order.
type OrderNode struct {
	ID       string
	Symbol   string
	Price    decimal.Decimal
	Quantity decimal.Decimal

	slot  int
	inUse bool
}

func (n *OrderNode) reset() {
	n.ID = ""
	n.Symbol = ""
	n.Price = decimal.Decimal{}
	n.Quantity = decimal.Decimal{}
	n.inUse = false
}

var orderNodeSize = int64(unsafe.Sizeof(OrderNode{}))

// OrderConfig sizes an OrderPool.
type OrderConfig struct {
	Capacity int
}

// OrderPool is a fixed-capacity arena of order nodes with an index of
// registered nodes keyed by order ID.
type OrderPool struct {
	mu    sync.Mutex
	nodes []OrderNode
	free  []*OrderNode
	index map[string]*OrderNode
	counters
}

// NewOrderPool pre-allocates cfg.Capacity order nodes.
func NewOrderPool(cfg OrderConfig) (*OrderPool, error) {
	if err := checkCapacity("order pool", cfg.Capacity); err != nil {
		return nil, err
	}
	p := &OrderPool{
		nodes: make([]OrderNode, cfg.Capacity),
		free:  make([]*OrderNode, 0, cfg.Capacity),
		index: make(map[string]*OrderNode, cfg.Capacity),
	}
	p.refill()
	return p, nil
}

// refill pushes every node onto the free list in slot order so that the
// lowest slot is handed out first. Caller holds mu.
func (p *OrderPool) refill() {
	p.free = p.free[:0]
	for i := len(p.nodes) - 1; i >= 0; i-- {
		n := &p.nodes[i]
		n.reset()
		n.slot = i
		p.free = append(p.free, n)
	}
}

func (p *OrderPool) owns(n *OrderNode) bool {
	return n != nil && n.slot >= 0 && n.slot < len(p.nodes) && &p.nodes[n.slot] == n
}

// Allocate hands out a zeroed node, or nil when the pool is exhausted.
func (p *OrderPool) Allocate() *OrderNode {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) == 0 {
		p.failures++
		return nil
	}
	n := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	n.inUse = true
	p.allocations++
	return n
}

// Deallocate returns a node to the pool and drops its registration. Nodes
// that are already free or belong to another pool are ignored.
func (p *OrderPool) Deallocate(n *OrderNode) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.owns(n) || !n.inUse {
		return
	}
	if n.ID != "" && p.index[n.ID] == n {
		delete(p.index, n.ID)
	}
	n.reset()
	p.free = append(p.free, n)
	p.deallocations++
}

// Register indexes an allocated node under the order ID.
func (p *OrderPool) Register(id string, n *OrderNode) error {
	if id == "" {
		return &domain.ValidationError{Message: "order id is required"}
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.owns(n) || !n.inUse {
		return domain.ErrForeignNode
	}
	if _, ok := p.index[id]; ok {
		return domain.ErrDuplicateOrder
	}
	n.ID = id
	p.index[id] = n
	return nil
}

// Lookup returns the node registered under id.
func (p *OrderPool) Lookup(id string) (*OrderNode, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.index[id]
	return n, ok
}

// Registered returns the number of indexed nodes.
func (p *OrderPool) Registered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.index)
}

// HasCapacity reports whether at least one node is free.
func (p *OrderPool) HasCapacity() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free) > 0
}

// Stats returns a usage snapshot.
func (p *OrderPool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats(len(p.nodes), len(p.nodes)-len(p.free), orderNodeSize)
}

// Reset reclaims every node and clears the index. Callers must not hold
// nodes across a Reset.
func (p *OrderPool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.index)
	p.refill()
}
