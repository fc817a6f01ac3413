package pool

import (
	"sync"
	"time"
	"unsafe"

	"github.com/efreitasn/tradecore/internal/domain"
)

// TxStatus is the lifecycle state of a transaction node.
type TxStatus int32

const (
	TxPending TxStatus = iota
	TxCommitted
	TxRolledBack
)

func (s TxStatus) String() string {
	switch s {
	case TxPending:
		return "PENDING"
	case TxCommitted:
		return "COMMITTED"
	case TxRolledBack:
		return "ROLLED_BACK"
	}
	return "UNKNOWN"
}

// TxNode tracks one logical unit of work. A node moves from TxPending to
// TxCommitted or TxRolledBack exactly once and is then ended.
type TxNode struct {
	ID      string
	Owner   domain.OwnerID
	Status  TxStatus
	BeganAt time.Time

	slot  int
	inUse bool
}

func (n *TxNode) reset() {
	n.ID = ""
	n.Owner = ""
	n.Status = TxPending
	n.BeganAt = time.Time{}
	n.inUse = false
}

var txNodeSize = int64(unsafe.Sizeof(TxNode{}))

// TransactionConfig sizes a TransactionPool.
type TransactionConfig struct {
	Capacity int
}

// TransactionPool is a fixed-capacity arena of transaction nodes with an
// index of registered nodes keyed by transaction ID.
type TransactionPool struct {
	mu    sync.Mutex
	nodes []TxNode
	free  []*TxNode
	index map[string]*TxNode

	commits   int64
	rollbacks int64
	counters
}

// NewTransactionPool pre-allocates cfg.Capacity transaction nodes.
func NewTransactionPool(cfg TransactionConfig) (*TransactionPool, error) {
	if err := checkCapacity("transaction pool", cfg.Capacity); err != nil {
		return nil, err
	}
	p := &TransactionPool{
		nodes: make([]TxNode, cfg.Capacity),
		free:  make([]*TxNode, 0, cfg.Capacity),
		index: make(map[string]*TxNode, cfg.Capacity),
	}
	for i := cfg.Capacity - 1; i >= 0; i-- {
		n := &p.nodes[i]
		n.slot = i
		p.free = append(p.free, n)
	}
	return p, nil
}

func (p *TransactionPool) owns(n *TxNode) bool {
	return n != nil && n.slot >= 0 && n.slot < len(p.nodes) && &p.nodes[n.slot] == n
}

// Begin hands out a pending node, or nil when the pool is exhausted.
func (p *TransactionPool) Begin() *TxNode {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) == 0 {
		p.failures++
		return nil
	}
	n := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	n.inUse = true
	n.Status = TxPending
	n.BeganAt = time.Now()
	p.allocations++
	return n
}

// Register indexes a begun node under id.
func (p *TransactionPool) Register(id string, n *TxNode) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.owns(n) || !n.inUse {
		return
	}
	n.ID = id
	p.index[id] = n
}

// Commit marks a pending node committed.
func (p *TransactionPool) Commit(n *TxNode) bool {
	return p.finish(n, TxCommitted)
}

// Rollback marks a pending node rolled back.
func (p *TransactionPool) Rollback(n *TxNode) bool {
	return p.finish(n, TxRolledBack)
}

func (p *TransactionPool) finish(n *TxNode, to TxStatus) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.owns(n) || !n.inUse || n.Status != TxPending {
		return false
	}
	n.Status = to
	if to == TxCommitted {
		p.commits++
	} else {
		p.rollbacks++
	}
	return true
}

// End drops the node's registration and returns it to the pool. Ending a
// node twice is a no-op.
func (p *TransactionPool) End(n *TxNode) {
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

// Lookup returns the node registered under id.
func (p *TransactionPool) Lookup(id string) (*TxNode, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.index[id]
	return n, ok
}

// Outcomes returns the number of commits and rollbacks recorded so far.
func (p *TransactionPool) Outcomes() (commits, rollbacks int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.commits, p.rollbacks
}

// HasCapacity reports whether at least one node is free.
func (p *TransactionPool) HasCapacity() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free) > 0
}

// Stats returns a usage snapshot.
func (p *TransactionPool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats(len(p.nodes), len(p.nodes)-len(p.free), txNodeSize)
}
