package mmu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTLBSizeRoundsUpToPowerOfTwo(t *testing.T) {
	tlb := NewTLB(5)
	require.Equal(t, 8, len(tlb.entries))
}

func TestTLBInsertLookupHit(t *testing.T) {
	tlb := NewTLB(4)
	tlb.Insert(Entry{VPN: 2, PPN: 0x123, R: true, X: true})
	e, ok := tlb.Lookup(2)
	require.True(t, ok)
	require.Equal(t, uint64(0x123), e.PPN)
}

func TestTLBLookupMissOnDifferentVPNSameSlot(t *testing.T) {
	tlb := NewTLB(4) // mask 3
	tlb.Insert(Entry{VPN: 2, PPN: 0x1})
	_, ok := tlb.Lookup(6) // 6 & 3 == 2, same slot, different tag
	require.False(t, ok)
}

func TestTLBFlushAllInvalidatesEverything(t *testing.T) {
	tlb := NewTLB(4)
	tlb.Insert(Entry{VPN: 1, PPN: 1})
	tlb.FlushAll()
	_, ok := tlb.Lookup(1)
	require.False(t, ok)
}

func TestMMUBareModeIsIdentity(t *testing.T) {
	m := New(8, Bare)
	paddr, fault := m.Translate(nil, 0, 0xDEADBEEF, AccessLoad, false, false, false, false)
	require.Equal(t, NoFault, fault)
	require.Equal(t, uint64(0xDEADBEEF), paddr)
}
