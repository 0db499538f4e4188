package rvsim

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// cpuSerializeVersion is incremented whenever the binary layout changes.
const cpuSerializeVersion = 1

// cpuSerializeSize is the number of bytes produced by Cpu.Serialize:
// version byte + 32 GPRs + 32 FPRs + PC (65*8 bytes) + priv (1 byte)
// + reservation (valid:1, addr:8, width:1) + 17 uint64 CSR fields
// (17*8 bytes) + fflags/frm (2 bytes).
const cpuSerializeSize = 1 + 65*8 + 1 + 10 + 17*8 + 2

// SerializeSize returns the number of bytes Serialize needs.
func (c *Cpu) SerializeSize() int { return cpuSerializeSize }

// Serialize snapshots a hart's architectural state — register files,
// CSRs, privilege mode, and the LR/SC reservation — into buf, which
// must be at least SerializeSize() bytes. In-flight pipeline state
// (ROB, latches, store buffer) is never part of a checkpoint: callers
// take one only at a retire boundary, after draining the pipeline.
func (c *Cpu) Serialize(buf []byte) error {
	if len(buf) < cpuSerializeSize {
		return errors.New("rvsim: serialize buffer too small")
	}

	buf[0] = cpuSerializeVersion
	be := binary.BigEndian
	off := 1

	for i := 0; i < 32; i++ {
		be.PutUint64(buf[off:], c.Regs.GPR[i])
		off += 8
	}
	for i := 0; i < 32; i++ {
		be.PutUint64(buf[off:], c.Regs.FPR[i])
		off += 8
	}
	be.PutUint64(buf[off:], c.Regs.PC)
	off += 8

	buf[off] = byte(c.Priv)
	off++

	buf[off] = boolByte(c.Reservation.Valid)
	off++
	be.PutUint64(buf[off:], uint64(c.Reservation.Addr))
	off += 8
	buf[off] = byte(c.Reservation.Width)
	off++

	csrFields := []uint64{
		c.CSR.mstatus, c.CSR.misa, c.CSR.medeleg, c.CSR.mideleg, c.CSR.mie,
		c.CSR.mtvec, c.CSR.mip, c.CSR.mscratch, c.CSR.mepc, c.CSR.mcause,
		c.CSR.mtval, c.CSR.sscratch, c.CSR.sepc, c.CSR.scause, c.CSR.stval,
		c.CSR.stvec, c.CSR.satp,
	}
	for _, v := range csrFields {
		be.PutUint64(buf[off:], v)
		off += 8
	}
	buf[off] = c.CSR.fflags
	off++
	buf[off] = c.CSR.frm
	off++

	return nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// Deserialize restores a hart's architectural state from buf, which
// must hold a buffer previously produced by Serialize. cycle/instret
// counters and mhartid are deliberately excluded: they are host
// bookkeeping, not guest-visible state a checkpoint restores.
func (c *Cpu) Deserialize(buf []byte) error {
	if len(buf) < cpuSerializeSize {
		return errors.New("rvsim: deserialize buffer too small")
	}
	if buf[0] != cpuSerializeVersion {
		return errors.Errorf("rvsim: unsupported checkpoint version %d", buf[0])
	}

	be := binary.BigEndian
	off := 1

	for i := 0; i < 32; i++ {
		c.Regs.GPR[i] = be.Uint64(buf[off:])
		off += 8
	}
	for i := 0; i < 32; i++ {
		c.Regs.FPR[i] = be.Uint64(buf[off:])
		off += 8
	}
	c.Regs.PC = be.Uint64(buf[off:])
	off += 8

	c.Priv = normalizePrivilege(buf[off])
	off++

	c.Reservation.Valid = buf[off] != 0
	off++
	c.Reservation.Addr = PAddr(be.Uint64(buf[off:]))
	off += 8
	c.Reservation.Width = Width(buf[off])
	off++

	fields := []*uint64{
		&c.CSR.mstatus, &c.CSR.misa, &c.CSR.medeleg, &c.CSR.mideleg, &c.CSR.mie,
		&c.CSR.mtvec, &c.CSR.mip, &c.CSR.mscratch, &c.CSR.mepc, &c.CSR.mcause,
		&c.CSR.mtval, &c.CSR.sscratch, &c.CSR.sepc, &c.CSR.scause, &c.CSR.stval,
		&c.CSR.stvec, &c.CSR.satp,
	}
	for _, f := range fields {
		*f = be.Uint64(buf[off:])
		off += 8
	}
	c.CSR.fflags = buf[off]
	off++
	c.CSR.frm = buf[off]
	off++

	return nil
}
