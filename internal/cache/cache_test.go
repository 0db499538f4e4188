package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeMem is a flat byte-addressable NextLevel backing store for tests.
type fakeMem struct {
	data [1 << 16]byte
}

func (m *fakeMem) Read(addr uint64, data []byte) int {
	copy(data, m.data[addr:addr+uint64(len(data))])
	return 10
}

func (m *fakeMem) Write(addr uint64, data []byte) int {
	copy(m.data[addr:addr+uint64(len(data))], data)
	return 10
}

func newTestCache(sets, ways, lineBytes int) (*Cache, *fakeMem) {
	mem := &fakeMem{}
	cfg := Config{Enabled: true, LineBytes: lineBytes, Sets: sets, Ways: ways, Write: WriteBack, Inclusion: NonInclusive}
	return New(cfg, NewLRU(sets, ways), nil, mem), mem
}

func TestCacheMissThenHit(t *testing.T) {
	c, mem := newTestCache(4, 2, 16)
	mem.data[0x100] = 0xAB

	buf := make([]byte, 1)
	lat := c.Access(0x100, buf, false, nil)
	require.Equal(t, 10, lat, "a miss must pay the refill latency")
	require.Equal(t, byte(0xAB), buf[0])
	require.Equal(t, uint64(1), c.Misses)

	buf[0] = 0
	lat = c.Access(0x100, buf, false, nil)
	require.Equal(t, 0, lat, "a hit is free under this model")
	require.Equal(t, byte(0xAB), buf[0])
	require.Equal(t, uint64(1), c.Hits)
}

func TestCacheWriteBackDefersWriteToEviction(t *testing.T) {
	c, mem := newTestCache(1, 1, 16) // one set, one way: any second tag evicts the first
	val := []byte{0x42}
	c.Access(0x000, nil, true, val) // fill + dirty write, line 0
	require.Equal(t, byte(0), mem.data[0x000], "write-back must not touch memory when the line is written")

	c.Access(0x100, nil, true, []byte{0x7}) // same set, different tag: evicts line 0
	require.Equal(t, byte(0x42), mem.data[0x000], "eviction of a dirty line must write it back")
}

func TestCacheWriteThroughWritesImmediately(t *testing.T) {
	mem := &fakeMem{}
	cfg := Config{Enabled: true, LineBytes: 16, Sets: 1, Ways: 1, Write: WriteThrough}
	c := New(cfg, NewLRU(1, 1), nil, mem)

	c.Access(0x0, nil, true, []byte{0x9})
	require.Equal(t, byte(0x9), mem.data[0x0])
}

func TestCacheDisabledBypassesToNextLevel(t *testing.T) {
	mem := &fakeMem{}
	mem.data[0x50] = 0x7
	cfg := Config{Enabled: false}
	c := New(cfg, nil, nil, mem)

	buf := make([]byte, 1)
	c.Access(0x50, buf, false, nil)
	require.Equal(t, byte(0x7), buf[0])
	require.Equal(t, uint64(0), c.Hits+c.Misses, "a disabled cache level records no hit/miss stats")
}
