package mmu

// MMU combines a TLB with the page-table walker behind a single
// Translate entry point, the shape the pipeline's Fetch1/Memory1
// stages call against, per spec.md §4.5.
type MMU struct {
	tlb  *TLB
	mode Mode
}

// New constructs an MMU with a TLB of the given size (rounded to a
// power of two by NewTLB) operating in mode.
func New(tlbSize int, mode Mode) *MMU {
	return &MMU{tlb: NewTLB(tlbSize), mode: mode}
}

func (m *MMU) SetMode(mode Mode) { m.mode = mode }
func (m *MMU) Mode() Mode        { return m.mode }
func (m *MMU) FlushAll()         { m.tlb.FlushAll() }

// Translate resolves a virtual address to a physical one, consulting
// the TLB first and falling back to a page walk on a miss, caching
// the result. Bare mode is the identity translation.
func (m *MMU) Translate(mem PhysMemory64, satpPPN uint64, vaddr uint64, kind AccessKind,
	sum, mxr, userMode, supervisorMode bool) (paddr uint64, fault FaultKind) {

	if m.mode == Bare {
		return vaddr, NoFault
	}

	vpn := vaddr >> 12
	offset := vaddr & 0xFFF

	if e, hit := m.tlb.Lookup(vpn); hit {
		if !permitted(e, kind, sum, mxr, userMode, supervisorMode) {
			return 0, faultFor(kind)
		}
		return e.PPN<<12 | offset, NoFault
	}

	ppn, r, w, x, u, f := Walk(mem, m.mode, satpPPN, vaddr, kind, sum, mxr, userMode, supervisorMode)
	if f != NoFault {
		return 0, f
	}
	m.tlb.Insert(Entry{VPN: vpn, PPN: ppn, R: r, W: w, X: x, U: u})
	return ppn<<12 | offset, NoFault
}

func permitted(e Entry, kind AccessKind, sum, mxr, userMode, supervisorMode bool) bool {
	if e.U && supervisorMode && !(kind != AccessFetch && sum) {
		return false
	}
	if !e.U && userMode {
		return false
	}
	switch kind {
	case AccessFetch:
		return e.X
	case AccessLoad:
		return e.R || (mxr && e.X)
	default:
		return e.W
	}
}
