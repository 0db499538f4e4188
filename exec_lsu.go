package rvsim

// misaligned reports whether addr is not naturally aligned to width,
// per spec.md §4.3 Memory1: "width > 1 and addr & (width-1) != 0".
// original_source/core/units/lsu/unaligned.rs confirms atomics use
// this same strict check (SPEC_FULL.md §4.8's Open Question
// resolution) — there is no softer unaligned-access emulation path.
func misaligned(addr PAddr, width Width) bool {
	if width <= Byte {
		return false
	}
	return uint64(addr)&(uint64(width)-1) != 0
}

// effectiveAddress computes rs1 + imm, per every load/store/AMO
// encoding's addressing mode.
func effectiveAddress(base uint64, imm int64) uint64 {
	return base + uint64(imm)
}
