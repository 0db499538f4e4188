// Package bpu implements branch prediction: a direct-mapped BTB, a
// return-address stack, a GShare direction predictor, and a static
// fallback, per spec.md §4.6.
package bpu

// BTB is a direct-mapped branch target buffer indexed by PC>>2, per
// spec.md §4.6: "(a) Direct-mapped BTB indexed by PC >> 2, each entry
// holding {tag, target, valid}."
type BTB struct {
	entries []btbEntry
	mask    uint64
}

type btbEntry struct {
	valid  bool
	tag    uint64
	target uint64
}

func NewBTB(size int) *BTB {
	n := 1
	for n < size {
		n <<= 1
	}
	if n == 0 {
		n = 1
	}
	return &BTB{entries: make([]btbEntry, n), mask: uint64(n - 1)}
}

func (b *BTB) index(pc uint64) uint64 { return (pc >> 2) & b.mask }

// Lookup returns the predicted target and whether the BTB holds an
// entry for pc.
func (b *BTB) Lookup(pc uint64) (target uint64, hit bool) {
	e := b.entries[b.index(pc)]
	if e.valid && e.tag == pc {
		return e.target, true
	}
	return 0, false
}

// Update installs or refreshes pc's predicted target, per spec.md
// §4.6's update_branch: "updates the BTB on taken."
func (b *BTB) Update(pc, target uint64) {
	idx := b.index(pc)
	b.entries[idx] = btbEntry{valid: true, tag: pc, target: target}
}
