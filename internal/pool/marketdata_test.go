package pool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/efreitasn/tradecore/internal/domain"
)

func newMarketDataPool(t *testing.T, buffers int) *MarketDataPool {
	t.Helper()
	p, err := NewMarketDataPool(MarketDataConfig{QuoteSize: 8, BufferCapacity: 4, Buffers: buffers})
	require.NoError(t, err)
	return p
}

func TestNewMarketDataPool_RejectsBadConfig(t *testing.T) {
	for _, cfg := range []MarketDataConfig{
		{QuoteSize: 0, BufferCapacity: 4, Buffers: 1},
		{QuoteSize: 8, BufferCapacity: 0, Buffers: 1},
		{QuoteSize: 8, BufferCapacity: 4, Buffers: 0},
	} {
		_, err := NewMarketDataPool(cfg)
		require.ErrorIs(t, err, domain.ErrInvalidConfig, "config %+v", cfg)
	}
}

func TestDefaultMarketDataConfig_UnitSize(t *testing.T) {
	cfg := DefaultMarketDataConfig()
	require.Equal(t, cfg.QuoteSize*cfg.BufferCapacity, cfg.UnitSize())
}

func TestMarketDataPool_AllocateReturnsUnitSizedBuffers(t *testing.T) {
	p := newMarketDataPool(t, 2)

	buf := p.Allocate()
	require.Len(t, buf, 32)
	require.Equal(t, 32, cap(buf), "capacity must be clamped to the unit")
	require.Equal(t, int64(32), p.Stats().TotalMemoryUsed)
}

func TestMarketDataPool_Exhaustion(t *testing.T) {
	p := newMarketDataPool(t, 1)
	require.NotNil(t, p.Allocate())
	require.False(t, p.HasCapacity())
	require.Nil(t, p.Allocate())
	require.Equal(t, int64(1), p.Stats().Failures)
}

func TestMarketDataPool_DeallocateRequiresUnitSize(t *testing.T) {
	p := newMarketDataPool(t, 1)
	buf := p.Allocate()

	require.ErrorIs(t, p.Deallocate(buf, len(buf)-1), domain.ErrBufferSize)
	require.Equal(t, 1, p.Stats().InUse, "rejected deallocate must not free the buffer")

	require.NoError(t, p.Deallocate(buf, p.Config().UnitSize()))
	require.True(t, p.HasCapacity())
}

func TestMarketDataPool_DeallocateZeroesBuffer(t *testing.T) {
	p := newMarketDataPool(t, 1)
	buf := p.Allocate()
	copy(buf, "quote")
	require.NoError(t, p.Deallocate(buf, 32))

	again := p.Allocate()
	for i, b := range again {
		require.Zerof(t, b, "byte %d not cleared", i)
	}
}

func TestMarketDataPool_RejectsForeignAndDoubleFree(t *testing.T) {
	p := newMarketDataPool(t, 2)
	buf := p.Allocate()

	require.ErrorIs(t, p.Deallocate(make([]byte, 32), 32), domain.ErrForeignNode)
	require.ErrorIs(t, p.Deallocate(nil, 32), domain.ErrForeignNode)
	require.NoError(t, p.Deallocate(buf, 32))
	require.ErrorIs(t, p.Deallocate(buf, 32), domain.ErrForeignNode)
	require.Equal(t, int64(1), p.Stats().Deallocations)
}
