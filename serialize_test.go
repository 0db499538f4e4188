package rvsim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestCpu() *Cpu {
	return &Cpu{CSR: NewCSRFile(), Priv: Machine}
}

func TestCpuSerializeDeserializeRoundTrip(t *testing.T) {
	c := newTestCpu()
	c.Regs.WriteGPR(5, 0x1122334455667788)
	c.Regs.WriteFloat64(9, 1.5)
	c.Regs.PC = 0x8000_0100
	c.Priv = Supervisor
	c.Reservation = Reservation{Valid: true, Addr: PAddr(0x9000), Width: Double}
	c.CSR.Write(csrMstatus, mstatusMIE)
	c.CSR.Write(csrSatp, 0xABCDEF)
	c.CSR.OrFflags(0x0F)

	buf := make([]byte, c.SerializeSize())
	require.NoError(t, c.Serialize(buf))

	restored := newTestCpu()
	require.NoError(t, restored.Deserialize(buf))

	require.Equal(t, c.Regs.GPR, restored.Regs.GPR)
	require.Equal(t, c.Regs.FPR, restored.Regs.FPR)
	require.Equal(t, c.Regs.PC, restored.Regs.PC)
	require.Equal(t, c.Priv, restored.Priv)
	require.Equal(t, c.Reservation, restored.Reservation)
	require.Equal(t, c.CSR.mstatus, restored.CSR.mstatus)
	require.Equal(t, c.CSR.satp, restored.CSR.satp)
	require.Equal(t, c.CSR.fflags, restored.CSR.fflags)
}

func TestCpuSerializeRejectsShortBuffer(t *testing.T) {
	c := newTestCpu()
	err := c.Serialize(make([]byte, 4))
	require.Error(t, err)
}

func TestCpuDeserializeRejectsWrongVersion(t *testing.T) {
	c := newTestCpu()
	buf := make([]byte, c.SerializeSize())
	require.NoError(t, c.Serialize(buf))
	buf[0] = 0xFF

	restored := newTestCpu()
	err := restored.Deserialize(buf)
	require.Error(t, err)
}
