package rvsim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSRFileResetState(t *testing.T) {
	c := NewCSRFile()
	require.Equal(t, uint64(0), c.mstatus)
	require.NotZero(t, c.misa&(1<<63), "misa MXL field must mark RV64")
	for _, l := range "IMAFDC" {
		require.NotZero(t, c.misa&(1<<uint(l-'A')), "misa must advertise extension %c", l)
	}
}

func TestCSRFileSstatusIsMaskedView(t *testing.T) {
	c := NewCSRFile()
	c.Write(csrMstatus, mstatusMIE|mstatusSIE|mstatusMPPMask)
	got := c.Read(csrSstatus)
	require.Equal(t, mstatusSIE, got, "sstatus must only expose the S-mode-visible bits")

	c.Write(csrSstatus, mstatusSUM)
	require.NotZero(t, c.mstatus&mstatusSUM)
	require.NotZero(t, c.mstatus&mstatusMPPMask, "writing sstatus must not clobber mstatus bits outside its mask")
}

func TestCSRFileMipHardwareBitsNotSoftwareWritable(t *testing.T) {
	c := NewCSRFile()
	c.SetMTIP(true)
	require.NotZero(t, c.mip&ipMTIP)

	// Software writes to mip only affect USIP/SSIP, never MTIP.
	c.Write(csrMip, 0)
	require.NotZero(t, c.mip&ipMTIP, "MTIP must stay set; only SetMTIP may clear it")

	c.Write(csrMip, ipSSIP)
	require.NotZero(t, c.mip&ipSSIP)
}

func TestCSRFileEpcClearsLowBit(t *testing.T) {
	c := NewCSRFile()
	c.Write(csrMepc, 0x8000_0003)
	require.Equal(t, uint64(0x8000_0002), c.Read(csrMepc), "mepc must be IALIGN-masked on write")
}

func TestMtvecTargetDirectVsVectored(t *testing.T) {
	direct := mtvecTarget(0x8000_0000, 7, true)
	require.Equal(t, uint64(0x8000_0000), direct)

	vectored := mtvecTarget(0x8000_0001, 7, true)
	require.Equal(t, uint64(0x8000_0000)+4*7, vectored)

	// Vectoring only applies to interrupts, never synchronous exceptions.
	excVectored := mtvecTarget(0x8000_0001, 7, false)
	require.Equal(t, uint64(0x8000_0000), excVectored)
}

func TestCSRFileFcsrPacksFflagsAndFrm(t *testing.T) {
	c := NewCSRFile()
	c.OrFflags(0x1F)
	c.Write(csrFrm, 0x5)
	require.Equal(t, uint64(0x5)<<5|0x1F, c.Fcsr())

	c2 := NewCSRFile()
	c2.Write(csrFcsr, 0x5<<5|0x03)
	require.Equal(t, uint8(0x03), c2.fflags)
	require.Equal(t, uint8(0x05), c2.frm)
}

func TestCSRFileUnknownCSRReadsZero(t *testing.T) {
	c := NewCSRFile()
	require.Equal(t, uint64(0), c.Read(0x7FF))
}
