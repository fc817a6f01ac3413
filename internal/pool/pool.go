// Package pool provides the fixed-capacity arenas the trading core borrows
// nodes from: order nodes, market-data quote buffers and transaction nodes.
//
// Every arena pre-allocates its backing storage at construction and never
// allocates on the hot path. Exhaustion is reported as a nil node, not an
// error, so callers can treat it as ordinary backpressure.
package pool

import (
	"fmt"

	"github.com/efreitasn/tradecore/internal/domain"
)

// Stats reports cumulative usage for one arena.
type Stats struct {
	Capacity        int   `json:"capacity"`
	InUse           int   `json:"in_use"`
	TotalMemoryUsed int64 `json:"total_memory_used"`
	Allocations     int64 `json:"allocations"`
	Deallocations   int64 `json:"deallocations"`
	Failures        int64 `json:"failures"`
}

// counters is embedded by each arena and only touched under the arena lock.
type counters struct {
	allocations   int64
	deallocations int64
	failures      int64
}

func (c *counters) stats(capacity, inUse int, unit int64) Stats {
	return Stats{
		Capacity:        capacity,
		InUse:           inUse,
		TotalMemoryUsed: int64(inUse) * unit,
		Allocations:     c.allocations,
		Deallocations:   c.deallocations,
		Failures:        c.failures,
	}
}

func checkCapacity(name string, n int) error {
	if n <= 0 {
		return fmt.Errorf("%s capacity must be positive, got %d: %w", name, n, domain.ErrInvalidConfig)
	}
	return nil
}
