package cache

// MRU evicts the most-recently-used way — the inverse of LRU, useful
// for scan-resistant workloads, per
// original_source/core/units/cache/policies/mru.rs.
type MRU struct {
	stamp [][]uint64
	clock uint64
}

func NewMRU(sets, ways int) *MRU {
	s := make([][]uint64, sets)
	for i := range s {
		s[i] = make([]uint64, ways)
	}
	return &MRU{stamp: s}
}

func (m *MRU) Update(set, way int) {
	m.clock++
	m.stamp[set][way] = m.clock
}

func (m *MRU) Victim(set int) int {
	best := 0
	for w := 1; w < len(m.stamp[set]); w++ {
		if m.stamp[set][w] > m.stamp[set][best] {
			best = w
		}
	}
	return best
}
