package cache

// Stride is a per-PC stride prefetcher: it remembers the last address
// and delta seen for each of a small number of tracked contexts
// (indexed by addr/lineBytes modulo the table size as a stand-in for
// a PC tag, since the cache layer only sees addresses) and, once the
// same delta repeats, prefetches addr+delta, per
// original_source/core/units/prefetch/stride.rs.
type Stride struct {
	lineBytes uint64
	table     []strideEntry
}

type strideEntry struct {
	valid    bool
	lastAddr uint64
	delta    int64
	confident bool
}

func NewStride(lineBytes, tableSize int) *Stride {
	return &Stride{lineBytes: uint64(lineBytes), table: make([]strideEntry, tableSize)}
}

func (s *Stride) Observe(addr uint64, hit bool) []uint64 {
	idx := (addr / s.lineBytes) % uint64(len(s.table))
	e := &s.table[idx]

	if !e.valid {
		e.valid = true
		e.lastAddr = addr
		e.delta = 0
		e.confident = false
		return nil
	}

	delta := int64(addr) - int64(e.lastAddr)
	e.confident = e.delta == delta && delta != 0
	e.delta = delta
	e.lastAddr = addr

	if !e.confident {
		return nil
	}
	return []uint64{uint64(int64(addr) + delta)}
}
