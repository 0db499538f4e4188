package rvsim

// storeEntry is one pending store keyed by the ROB tag that produced
// it, per spec.md §3.
type storeEntry struct {
	valid bool
	tag   RobTag
	addr  PAddr
	value uint64
	width Width
	ready bool // true once Memory1 has filled in addr/value
}

// StoreBuffer is the FIFO of pending stores. Entries are allocated (in
// order) at rename with address/data unknown, filled at Memory1 once
// the address is translated, and drained to memory at commit in
// program order.
type StoreBuffer struct {
	entries []storeEntry
	head    int
	tail    int
	count   int
}

// NewStoreBuffer allocates a store buffer with the given capacity.
func NewStoreBuffer(size int) *StoreBuffer {
	return &StoreBuffer{entries: make([]storeEntry, size)}
}

func (sb *StoreBuffer) Full() bool  { return sb.count == len(sb.entries) }
func (sb *StoreBuffer) Empty() bool { return sb.count == 0 }

// Allocate reserves a slot for a store renamed with the given ROB tag.
// Caller must check Full() first.
func (sb *StoreBuffer) Allocate(tag RobTag) {
	sb.entries[sb.tail] = storeEntry{valid: true, tag: tag}
	sb.tail++
	if sb.tail == len(sb.entries) {
		sb.tail = 0
	}
	sb.count++
}

// Fill records the address/value/width for the store with the given
// tag; Memory1 calls it with the translated physical address.
func (sb *StoreBuffer) Fill(tag RobTag, addr PAddr, value uint64, width Width) {
	for i, n := 0, sb.count; i < n; i++ {
		idx := (sb.head + i) % len(sb.entries)
		if sb.entries[idx].valid && sb.entries[idx].tag == tag {
			sb.entries[idx].addr = addr
			sb.entries[idx].value = value
			sb.entries[idx].width = width
			sb.entries[idx].ready = true
			return
		}
	}
}

// ForwardResult is the outcome of scanning the store buffer for a
// load's address range.
type ForwardResult struct {
	Hit   bool
	Value uint64
}

// Forward scans the store buffer, youngest-older-than-tag first, for
// a ready entry whose [addr, addr+width) covers the load's range, per
// spec.md §4.3: "the youngest older store whose address and width
// cover the load." Only entries for which excludeBefore reports true
// are considered; the caller passes a predicate that holds for stores
// older than the load.
func (sb *StoreBuffer) Forward(loadAddr PAddr, loadWidth Width, excludeBefore func(RobTag) bool) ForwardResult {
	lo, hi := uint64(loadAddr), uint64(loadAddr)+uint64(loadWidth)
	for i := sb.count - 1; i >= 0; i-- {
		idx := (sb.head + i) % len(sb.entries)
		e := sb.entries[idx]
		if !e.valid || !e.ready {
			continue
		}
		if !excludeBefore(e.tag) {
			continue
		}
		slo, shi := uint64(e.addr), uint64(e.addr)+uint64(e.width)
		if lo >= slo && hi <= shi {
			shift := (lo - slo) * 8
			mask := loadWidth.Mask()
			return ForwardResult{Hit: true, Value: (e.value >> shift) & mask}
		}
	}
	return ForwardResult{}
}

// DrainHead pops the oldest entry (it has just been written to
// memory by commit) and returns it.
func (sb *StoreBuffer) DrainHead() (storeEntry, bool) {
	if sb.count == 0 {
		return storeEntry{}, false
	}
	e := sb.entries[sb.head]
	sb.entries[sb.head].valid = false
	sb.head++
	if sb.head == len(sb.entries) {
		sb.head = 0
	}
	sb.count--
	return e, true
}

// PeekHead returns the oldest entry without removing it, so commit
// can check readiness before draining.
func (sb *StoreBuffer) PeekHead() (storeEntry, bool) {
	if sb.count == 0 {
		return storeEntry{}, false
	}
	return sb.entries[sb.head], true
}

// DiscardAll drops every pending store (flush on trap, per spec.md
// §4.7 — uncommitted stores are discarded, never written).
func (sb *StoreBuffer) DiscardAll() {
	for i := range sb.entries {
		sb.entries[i].valid = false
	}
	sb.head, sb.tail, sb.count = 0, 0, 0
}
