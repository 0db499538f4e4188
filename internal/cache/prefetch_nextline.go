package cache

// NextLine always requests the line immediately following the one
// just accessed, per
// original_source/core/units/prefetch/nextline.rs.
type NextLine struct {
	lineBytes uint64
}

func NewNextLine(lineBytes int) *NextLine {
	return &NextLine{lineBytes: uint64(lineBytes)}
}

func (n *NextLine) Observe(addr uint64, hit bool) []uint64 {
	base := (addr / n.lineBytes) * n.lineBytes
	return []uint64{base + n.lineBytes}
}
