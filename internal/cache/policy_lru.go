package cache

// LRU tracks per-set recency as a monotonic counter per way; the
// victim is the way with the smallest counter, per
// original_source/core/units/cache/policies/lru.rs.
type LRU struct {
	stamp [][]uint64
	clock uint64
}

func NewLRU(sets, ways int) *LRU {
	s := make([][]uint64, sets)
	for i := range s {
		s[i] = make([]uint64, ways)
	}
	return &LRU{stamp: s}
}

func (l *LRU) Update(set, way int) {
	l.clock++
	l.stamp[set][way] = l.clock
}

func (l *LRU) Victim(set int) int {
	best := 0
	for w := 1; w < len(l.stamp[set]); w++ {
		if l.stamp[set][w] < l.stamp[set][best] {
			best = w
		}
	}
	return best
}
