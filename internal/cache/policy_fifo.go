package cache

// FIFO evicts the way that was installed longest ago, ignoring
// subsequent hits, per
// original_source/core/units/cache/policies/fifo.rs.
type FIFO struct {
	next []int // next way to install into, per set
	ways int
}

func NewFIFO(sets, ways int) *FIFO {
	return &FIFO{next: make([]int, sets), ways: ways}
}

// Update is a no-op on hits: FIFO order is unaffected by accesses.
func (f *FIFO) Update(set, way int) {}

func (f *FIFO) Victim(set int) int {
	way := f.next[set]
	f.next[set] = (way + 1) % f.ways
	return way
}
