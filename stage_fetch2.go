package rvsim

// stageFetch2 issues the physical-address read to the I-cache and
// determines instruction length from the low two bits of the first
// 16-bit half-word (RVC quadrants 0-2 are compressed, quadrant 3 is a
// full 32-bit instruction), per spec.md §4.1/§4.2.
func stageFetch2(cpu *Cpu, p *Pipeline) {
	if p.Fetch2Stall > 0 {
		p.Fetch2Stall--
		return
	}
	if !p.Latches.F2D.Empty() {
		return
	}
	u, ok := p.Latches.F1F2.Peek()
	if !ok {
		return
	}

	if u.Trap.Valid {
		p.Latches.F1F2.Take()
		p.Latches.F2D.Put(u)
		return
	}

	var buf [4]byte
	latency := 0
	if cpu.ICache != nil {
		latency = cpu.ICache.Access(uint64(u.MemAddr), buf[:], false, nil)
	} else {
		raw, _ := fetchWord(cpu, uint64(u.MemAddr))
		buf[0], buf[1], buf[2], buf[3] = byte(raw), byte(raw>>8), byte(raw>>16), byte(raw>>24)
	}
	if latency > 0 {
		p.Fetch2Stall = latency
	}

	raw := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	instSize := 4
	if raw&0x3 != 0x3 {
		instSize = 2
		raw &= 0xFFFF
	}
	u.Raw = raw
	u.InstSize = instSize
	if instSize == 2 {
		u.PredictedNextPC = u.PC + 2
		if u.PredictedTaken {
			u.PredictedNextPC = u.PredictedTarget
		}
		p.FetchPC = u.PredictedNextPC
	}

	p.Latches.F1F2.Take()
	p.Latches.F2D.Put(u)
}

// fetchWord reads up to 4 bytes at a physical address directly from
// the bus (stageFetch2 uses it when no I-cache is configured) and
// reports whether the instruction is compressed (2) or full-width (4).
// The upper half-word is read from paddr+2 with no second
// translation, so an instruction that crosses a page boundary is
// taken from physically contiguous memory.
func fetchWord(cpu *Cpu, paddr uint64) (raw uint32, size int) {
	readByte := func(a uint64) byte {
		shift := uint(8 * (a & 7))
		word := cpu.Bus.ReadPhys64(a &^ 7)
		return byte(word >> shift)
	}

	b0, b1 := readByte(paddr), readByte(paddr+1)
	half := uint16(b0) | uint16(b1)<<8
	if half&0x3 != 0x3 {
		return uint32(half), 2
	}
	b2, b3 := readByte(paddr+2), readByte(paddr+3)
	return uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16 | uint32(b3)<<24, 4
}
