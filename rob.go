package rvsim

// RobTag identifies a reorder-buffer slot: a circular-buffer index in
// the low bits plus an epoch bit in bit 31 that tells apart tags from
// successive passes over the same slot, without a monotonic counter.
// Age comparisons do not use the epoch: OlderThan compares each tag's
// distance from the head (see DESIGN.md, Open Question: ROB tag
// representation).
type RobTag uint32

const robEpochBit RobTag = 1 << 31

func makeRobTag(index int, epoch bool) RobTag {
	t := RobTag(index)
	if epoch {
		t |= robEpochBit
	}
	return t
}

func (t RobTag) index() int   { return int(t &^ robEpochBit) }
func (t RobTag) epoch() bool  { return t&robEpochBit != 0 }

// RegFile selects which architectural register file a destination
// belongs to.
type RegFile int

const (
	RegFileNone RegFile = iota
	RegFileInt
	RegFileFP
)

// RobEntry is one in-flight instruction tracked by the reorder
// buffer, per spec.md §3.
type RobEntry struct {
	Valid bool

	PC       uint64
	Raw      uint32
	Signals  ControlSignals
	InstSize int

	DestReg  int
	DestFile RegFile

	Result    uint64
	Completed bool

	Trap Trap

	PredictedTaken  bool
	PredictedTarget uint64
	ActualTaken     bool
	ActualTarget    uint64
	BranchResolved  bool

	FPFlags uint8 // raised FP exception flags, OR'd into fcsr at commit
}

// Rob is the bounded circular reorder buffer.
type Rob struct {
	entries []RobEntry
	head    int // oldest (next to commit)
	tail    int // next free slot (next to allocate)
	count   int
	epoch   bool // flips each time tail wraps, distinguishing tag generations
}

// NewRob allocates a reorder buffer with the given number of slots.
func NewRob(size int) *Rob {
	return &Rob{entries: make([]RobEntry, size)}
}

func (r *Rob) Size() int  { return len(r.entries) }
func (r *Rob) Count() int { return r.count }
func (r *Rob) Full() bool { return r.count == len(r.entries) }
func (r *Rob) Empty() bool { return r.count == 0 }

// Allocate reserves the next ROB slot for a renamed micro-op and
// returns its tag. Caller must check Full() first.
func (r *Rob) Allocate(e RobEntry) RobTag {
	idx := r.tail
	tag := makeRobTag(idx, r.epoch)
	e.Valid = true
	r.entries[idx] = e
	r.tail++
	if r.tail == len(r.entries) {
		r.tail = 0
		r.epoch = !r.epoch
	}
	r.count++
	return tag
}

// Get returns a pointer to the entry in tag's slot, or nil if that
// slot holds no entry (it has retired or been flushed). The epoch bit
// is not compared, so a tag whose slot has been reallocated resolves
// to the newer entry.
func (r *Rob) Get(tag RobTag) *RobEntry {
	idx := tag.index()
	if idx < 0 || idx >= len(r.entries) || !r.entries[idx].Valid {
		return nil
	}
	return &r.entries[idx]
}

// HeadTag returns the tag of the oldest present entry.
func (r *Rob) HeadTag() RobTag {
	// The head's epoch is the tail's epoch unless the buffer has
	// wrapped without the head catching up, in which case head is in
	// the previous epoch.
	headEpoch := r.epoch
	if r.head > r.tail || (r.head == r.tail && r.count > 0) {
		headEpoch = !r.epoch
	}
	return makeRobTag(r.head, headEpoch)
}

// Head returns a pointer to the oldest present entry, or nil if empty.
func (r *Rob) Head() *RobEntry {
	if r.count == 0 {
		return nil
	}
	return &r.entries[r.head]
}

// OlderThan reports whether a was allocated strictly before b, by
// each tag's distance from the current head (the oldest in-flight
// entry) — the program-order relation store-to-load forwarding needs
// to pick "the youngest older store", per spec.md §4.3.
func (r *Rob) OlderThan(a, b RobTag) bool {
	return r.distanceFromHead(a) < r.distanceFromHead(b)
}

func (r *Rob) distanceFromHead(tag RobTag) int {
	d := tag.index() - r.head
	if d < 0 {
		d += len(r.entries)
	}
	return d
}

// Retire pops the head entry (commit succeeded for it).
func (r *Rob) Retire() {
	if r.count == 0 {
		return
	}
	r.entries[r.head].Valid = false
	r.head++
	if r.head == len(r.entries) {
		r.head = 0
	}
	r.count--
}

// FlushFrom discards every entry from (and including) tag onward —
// used when a branch misprediction or trap at an older entry
// invalidates everything younger. Entries strictly older than tag
// (in program order, head-relative) are kept.
func (r *Rob) FlushFrom(tag RobTag) {
	idx := tag.index()
	if idx < 0 || idx >= len(r.entries) {
		return
	}
	// Walk backward from tail to idx (inclusive), invalidating and
	// shrinking tail/count.
	for r.count > 0 {
		last := r.tail - 1
		if last < 0 {
			last = len(r.entries) - 1
		}
		if !r.entries[last].Valid {
			break
		}
		r.entries[last].Valid = false
		r.tail = last
		r.count--
		if last == idx {
			break
		}
	}
}

// FlushAll discards every in-flight entry (full pipeline flush on a
// delivered trap, per spec.md §4.7).
func (r *Rob) FlushAll() {
	for i := range r.entries {
		r.entries[i].Valid = false
	}
	r.head = 0
	r.tail = 0
	r.count = 0
}
