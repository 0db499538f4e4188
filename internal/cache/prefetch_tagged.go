package cache

// Tagged is next-line prefetch with a "prefetched" tag: a prefetched
// line only triggers the next prefetch once it is actually
// demand-accessed (preventing runaway prefetch chains on cold,
// never-used streams), per
// original_source/core/units/prefetch/tagged.rs.
type Tagged struct {
	lineBytes uint64
	tagged    map[uint64]bool
}

func NewTagged(lineBytes int) *Tagged {
	return &Tagged{lineBytes: uint64(lineBytes), tagged: make(map[uint64]bool)}
}

// MarkPrefetched records that line was brought in speculatively, not
// by demand. The cache driving this prefetcher should call it for
// every address Observe returns.
func (t *Tagged) MarkPrefetched(addr uint64) {
	line := (addr / t.lineBytes) * t.lineBytes
	t.tagged[line] = true
}

func (t *Tagged) Observe(addr uint64, hit bool) []uint64 {
	line := (addr / t.lineBytes) * t.lineBytes

	if hit && !t.tagged[line] {
		return nil
	}
	delete(t.tagged, line)

	next := line + t.lineBytes
	t.MarkPrefetched(next)
	return []uint64{next}
}
